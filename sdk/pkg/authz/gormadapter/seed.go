package gormadapter

import (
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/sdk/pkg/authz"
)

// BuiltinDomain 内置域，系统自带的管理端策略都挂在这个域下。
const BuiltinDomain = "built-in"

// RoleSuper 超级管理员角色编码。
const RoleSuper = "ROLE_SUPER"

// DefaultPolicies 返回系统初始化时内置的策略集：超级管理员在内置域对
// 管理端点的全部访问权限。路径和方法必须与路由注册的保持一致，
// 中间件拿 c.Request.URL.Path 做判定，带完整的 /api/v1 前缀。
func DefaultPolicies() []authz.PolicyRule {
	endpoints := []struct {
		path   string
		method string
	}{
		{"/api/v1/authorization/assign-permission", "PUT"},
		{"/api/v1/authorization/assign-routes", "PUT"},
		{"/api/v1/authorization/assign-users", "PUT"},
	}

	rules := make([]authz.PolicyRule, 0, len(endpoints))
	for _, ep := range endpoints {
		rules = append(rules, authz.NewRule(authz.PTypePolicy, RoleSuper, BuiltinDomain, ep.path, ep.method))
	}
	return rules
}

// SeedBuiltinPolicies 在策略表为空时写入内置策略，重复执行无副作用。
func SeedBuiltinPolicies(db *gorm.DB) error {
	var count int64
	if err := db.Model(&CasbinRule{}).Count(&count).Error; err != nil {
		return authz.NewAdapterError("Seed", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]CasbinRule, 0)
	for _, rule := range DefaultPolicies() {
		rows = append(rows, fromRule(rule))
	}
	if err := db.Create(&rows).Error; err != nil {
		return authz.NewAdapterError("Seed", err)
	}
	return nil
}
