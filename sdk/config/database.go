package config

// Database 数据库连接配置
type Database struct {
	Driver          string `mapstructure:"driver"`
	Source          string `mapstructure:"source"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifeTime int    `mapstructure:"connMaxLifeTime"`
}

var DatabaseConfig = new(Database)
