package migration

import (
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// Func 迁移函数签名
type Func func(db *gorm.DB, version string) error

// Registry 版本化迁移注册表。版本按字典序执行，已执行过的版本
// 记录在 sys_migration 表中，重启后跳过。
type Registry struct {
	mu       sync.Mutex
	versions map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{versions: make(map[string]Func)}
}

// Register 注册一个迁移版本，重复注册同一版本会被覆盖。
func (r *Registry) Register(version string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[version] = fn
}

// Versions 返回全部已注册版本，字典序。
func (r *Registry) Versions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Migrate 按序执行未完成的版本。每个版本在独立事务中执行，
// 版本记录和变更一起提交，失败即中止后续版本。
func (r *Registry) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("迁移版本表初始化失败: %w", err)
	}

	var applied []Migration
	if err := db.Find(&applied).Error; err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, version := range r.Versions() {
		if done[version] {
			continue
		}
		r.mu.Lock()
		fn := r.versions[version]
		r.mu.Unlock()

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := fn(tx, version); err != nil {
				return err
			}
			return tx.Create(&Migration{Version: version}).Error
		})
		if err != nil {
			return fmt.Errorf("迁移版本 %s 失败: %w", version, err)
		}
	}
	return nil
}
