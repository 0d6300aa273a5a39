package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config 顶层配置结构
type Config struct {
	Application *Application `mapstructure:"application"`
	Logger      *Logger      `mapstructure:"logger"`
	JWT         *JWT         `mapstructure:"jwt"`
	Database    *Database    `mapstructure:"database"`
	Authz       *Authz       `mapstructure:"authz"`
}

var AppConfig = &Config{
	Application: ApplicationConfig,
	Logger:      LoggerConfig,
	JWT:         JwtConfig,
	Database:    DatabaseConfig,
	Authz:       AuthzConfig,
}

// Setup 读取 yaml 配置文件并映射到 AppConfig
func Setup(configYml string) error {
	v := viper.New()
	v.SetConfigFile(configYml)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(AppConfig); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}
