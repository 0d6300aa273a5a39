package config

// Logger 日志配置
type Logger struct {
	Path        string `mapstructure:"path"`
	Level       string `mapstructure:"level"`
	Stdout      bool   `mapstructure:"stdout"`
	MaxSize     int    `mapstructure:"maxSize"`     // 单个日志文件最大大小，单位MB
	MaxBackups  int    `mapstructure:"maxBackups"`  // 保留的旧日志文件数量
	InfoMaxAge  int    `mapstructure:"infoMaxAge"`  // info日志保留天数
	ErrorMaxAge int    `mapstructure:"errorMaxAge"` // error日志保留天数
}

var LoggerConfig = new(Logger)
