package logger

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContextKey string

const (
	TrafficKey ContextKey = "Admin-Request-Id"
	LoggerKey  ContextKey = "_admin-core-zap-logger-request"
)

var (
	Logger        *zap.Logger        //全局ZapLogger打印
	DefaultLogger *zap.SugaredLogger //全局SugarLogger打印，用于简易打印
)

// SetRequestLogger 中间件：为每个请求生成 TraceID 并绑定带 TraceID 的 logger
func SetRequestLogger(c *gin.Context) {
	requestId := c.GetHeader(string(TrafficKey))
	if requestId == "" {
		requestId = uuid.New().String()
	}
	ctx := context.WithValue(c.Request.Context(), TrafficKey, requestId)
	requestLogger := Logger.With(zap.String(string(TrafficKey), requestId))
	ctx = context.WithValue(ctx, LoggerKey, requestLogger)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// GetRequestLogger 从上下文获得带 TraceID 的 logger，取不到时退回全局 logger
func GetRequestLogger(c *gin.Context) *zap.Logger {
	ctx := c.Request.Context()
	requestLogger, ok := ctx.Value(LoggerKey).(*zap.Logger)
	if !ok {
		requestLogger = Logger
	}
	if requestLogger == nil {
		requestLogger = zap.NewNop()
	}
	return requestLogger
}

func Info(args ...interface{}) {
	DefaultLogger.Info(args...)
}

func Infof(template string, args ...interface{}) {
	DefaultLogger.Infof(template, args...)
}

func Debug(args ...interface{}) {
	DefaultLogger.Debug(args...)
}

func Debugf(template string, args ...interface{}) {
	DefaultLogger.Debugf(template, args...)
}

func Warn(args ...interface{}) {
	DefaultLogger.Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	DefaultLogger.Warnf(template, args...)
}

func Error(args ...interface{}) {
	DefaultLogger.Error(args...)
}

func Errorf(template string, args ...interface{}) {
	DefaultLogger.Errorf(template, args...)
}

func Fatal(args ...interface{}) {
	DefaultLogger.Fatal(args...)
	os.Exit(1)
}

func Fatalf(template string, args ...interface{}) {
	DefaultLogger.Fatalf(template, args...)
	os.Exit(1)
}
