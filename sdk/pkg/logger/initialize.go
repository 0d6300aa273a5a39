package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/soybean-go/admin-core/sdk/config"
)

// Setup 初始化全局日志记录器，放在程序运行前执行。
// info 与 error 分文件输出，lumberjack 负责滚动与清理。
func Setup(cfg *config.Logger) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var logLevel zapcore.Level
	if err := logLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		logLevel = zapcore.InfoLevel // 默认info级别
	}

	var cores []zapcore.Core

	if cfg.Path != "" {
		if logLevel <= zapcore.InfoLevel {
			infoCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				fileWriter(cfg, "info.log", cfg.InfoMaxAge),
				zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
					return lvl >= logLevel && lvl < zapcore.ErrorLevel
				}),
			)
			cores = append(cores, infoCore)
		}

		errorCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			fileWriter(cfg, "error.log", cfg.ErrorMaxAge),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			}),
		)
		cores = append(cores, errorCore)
	}

	if cfg.Stdout {
		consoleEncoderConfig := encoderConfig
		consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig),
			zapcore.AddSync(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= logLevel
			}),
		)
		cores = append(cores, consoleCore)
	}

	// 没有任何core时添加一个空core防止panic
	if len(cores) == 0 {
		nullCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(io.Discard),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return false }),
		)
		cores = append(cores, nullCore)
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	DefaultLogger = Logger.Sugar()
}

func fileWriter(cfg *config.Logger, name string, maxAge int) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Path + "/" + name,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	})
}
