package config

// JWT JWT配置
type JWT struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
	Timeout  int    `mapstructure:"timeout"` // token有效期，单位秒
}

var JwtConfig = new(JWT)
