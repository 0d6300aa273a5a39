package main

import (
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/models"
	"github.com/soybean-go/admin-core/sdk/pkg/authz/gormadapter"
	"github.com/soybean-go/admin-core/sdk/pkg/migration"
)

// migrate 建表并写入内置策略。版本号一经发布不再改动，
// 后续结构变更追加新版本。
func migrate(db *gorm.DB) error {
	registry := migration.NewRegistry()

	registry.Register("2026082801", func(tx *gorm.DB, version string) error {
		return tx.AutoMigrate(
			&models.SysDomain{}, &models.SysUser{}, &models.SysRole{},
			&models.SysEndpoint{}, &models.SysMenu{},
			&models.SysRoleMenu{}, &models.SysUserRole{},
		)
	})

	registry.Register("2026082802", func(tx *gorm.DB, version string) error {
		return gormadapter.SeedBuiltinPolicies(tx)
	})

	return registry.Migrate(db)
}
