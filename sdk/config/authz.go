package config

// Authz 授权引擎配置
type Authz struct {
	// DomainScoped 是否启用按域判定（四列调用约定）。
	// 一个部署只能使用一种约定，不可混用。
	DomainScoped bool `mapstructure:"domainScoped"`
	// ReloadCron 定时全量重载策略的 cron 表达式，空串关闭定时重载。
	ReloadCron string `mapstructure:"reloadCron"`
}

var AuthzConfig = &Authz{DomainScoped: true}
