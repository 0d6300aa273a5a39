package config

// Application 应用基础配置
type Application struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Name string `mapstructure:"name"`
	Mode string `mapstructure:"mode"` // debug 或 release
}

var ApplicationConfig = new(Application)
