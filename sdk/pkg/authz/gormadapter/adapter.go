package gormadapter

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/sdk/pkg/authz"
)

// CasbinRule 是策略规则的持久化形态，一行一条规则。
// v0..v5 中未使用的位置存空字符串，不存 NULL。
type CasbinRule struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PType string `gorm:"column:ptype;size:100" json:"ptype"`
	V0    string `gorm:"size:100" json:"v0"`
	V1    string `gorm:"size:100" json:"v1"`
	V2    string `gorm:"size:100" json:"v2"`
	V3    string `gorm:"size:100" json:"v3"`
	V4    string `gorm:"size:100" json:"v4"`
	V5    string `gorm:"size:100" json:"v5"`
}

// 表名前缀为 sys，策略表 sys_casbin_rule 存放访问控制策略
func (CasbinRule) TableName() string {
	return "sys_casbin_rule"
}

func (m CasbinRule) toRule() authz.PolicyRule {
	return authz.PolicyRule{
		PType: m.PType,
		V0:    m.V0, V1: m.V1, V2: m.V2, V3: m.V3, V4: m.V4, V5: m.V5,
	}
}

func fromRule(r authz.PolicyRule) CasbinRule {
	return CasbinRule{
		PType: r.PType,
		V0:    r.V0, V1: r.V1, V2: r.V2, V3: r.V3, V4: r.V4, V5: r.V5,
	}
}

// Store 基于 gorm 实现 authz.PolicyStore，与应用其余部分共享同一个
// 连接池。所有存储层错误统一包装为 *authz.AdapterError。
type Store struct {
	db *gorm.DB
}

// NewStore 创建存储并迁移策略表。db 为空视为存储不可用。
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("create policy store: %w", authz.ErrStoreUnavailable)
	}
	if err := db.AutoMigrate(&CasbinRule{}); err != nil {
		return nil, authz.NewAdapterError("Migrate", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) LoadPolicy() ([]authz.PolicyRule, error) {
	var rows []CasbinRule
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, authz.NewAdapterError("LoadPolicy", err)
	}
	rules := make([]authz.PolicyRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, row.toRule())
	}
	return rules, nil
}

func (s *Store) LoadFilteredPolicy(filter authz.Filter) ([]authz.PolicyRule, error) {
	tx := s.db.Model(&CasbinRule{})

	var cond *gorm.DB
	if filter.P != nil {
		cond = prefixCondition(s.db, "p", filter.P)
	}
	if filter.G != nil {
		g := prefixCondition(s.db, "g", filter.G)
		if cond == nil {
			cond = g
		} else {
			cond = cond.Or(g)
		}
	}
	if cond == nil {
		return []authz.PolicyRule{}, nil
	}

	var rows []CasbinRule
	if err := tx.Where(cond).Find(&rows).Error; err != nil {
		return nil, authz.NewAdapterError("LoadFilteredPolicy", err)
	}
	rules := make([]authz.PolicyRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, row.toRule())
	}
	return rules, nil
}

// prefixCondition 组合一半过滤器：ptype 前缀匹配加上各非空字段的等值约束。
func prefixCondition(db *gorm.DB, prefix string, fields []string) *gorm.DB {
	cond := db.Where("ptype LIKE ?", prefix+"%")
	for i, v := range fields {
		if v == "" {
			continue
		}
		cond = cond.Where(fmt.Sprintf("v%d = ?", i), v)
	}
	return cond
}

// SavePolicy 全量替换：按自然键逐条 upsert，再删除本次未覆盖到的行。
// upsert 在前、删除在后，无关行不会出现短暂缺失。
func (s *Store) SavePolicy(rules []authz.PolicyRule) error {
	ids := make([]int64, 0, len(rules))
	for _, rule := range rules {
		id, err := s.upsert(rule)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	tx := s.db
	if len(ids) > 0 {
		tx = tx.Where("id NOT IN ?", ids)
	}
	if err := tx.Delete(&CasbinRule{}, "1 = 1").Error; err != nil {
		return authz.NewAdapterError("SavePolicy", err)
	}
	return nil
}

// upsert 返回已存在行的 id，不存在则插入并返回新 id。
func (s *Store) upsert(rule authz.PolicyRule) (int64, error) {
	var existing CasbinRule
	err := s.tupleQuery(rule).Take(&existing).Error
	switch {
	case err == nil:
		return existing.ID, nil
	case err != gorm.ErrRecordNotFound:
		return 0, authz.NewAdapterError("SavePolicy", err)
	}

	row := fromRule(rule)
	if err := s.db.Create(&row).Error; err != nil {
		return 0, authz.NewAdapterError("SavePolicy", err)
	}
	return row.ID, nil
}

// tupleQuery 按全部 7 个字段做自然键查询。
func (s *Store) tupleQuery(rule authz.PolicyRule) *gorm.DB {
	return s.db.Model(&CasbinRule{}).Where(
		"ptype = ? AND v0 = ? AND v1 = ? AND v2 = ? AND v3 = ? AND v4 = ? AND v5 = ?",
		rule.PType, rule.V0, rule.V1, rule.V2, rule.V3, rule.V4, rule.V5,
	)
}

// AddPolicy 先查后插：元组唯一性由查询保证而非数据库约束，并发下由
// Enforcer 的写锁串行化。相同元组重复添加视为成功。
func (s *Store) AddPolicy(ptype string, rule []string) error {
	r := authz.NewRule(ptype, rule...)

	var count int64
	if err := s.tupleQuery(r).Count(&count).Error; err != nil {
		return authz.NewAdapterError("AddPolicy", err)
	}
	if count > 0 {
		return nil
	}

	row := fromRule(r)
	if err := s.db.Create(&row).Error; err != nil {
		return authz.NewAdapterError("AddPolicy", err)
	}
	return nil
}

func (s *Store) AddPolicies(ptype string, rules [][]string) error {
	for _, rule := range rules {
		if err := s.AddPolicy(ptype, rule); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RemovePolicy(ptype string, rule []string) (bool, error) {
	r := authz.NewRule(ptype, rule...)
	res := s.db.Where(
		"ptype = ? AND v0 = ? AND v1 = ? AND v2 = ? AND v3 = ? AND v4 = ? AND v5 = ?",
		r.PType, r.V0, r.V1, r.V2, r.V3, r.V4, r.V5,
	).Delete(&CasbinRule{})
	if res.Error != nil {
		return false, authz.NewAdapterError("RemovePolicy", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) RemovePolicies(ptype string, rules [][]string) error {
	for _, rule := range rules {
		if _, err := s.RemovePolicy(ptype, rule); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RemoveFilteredPolicy(ptype string, fieldIndex int, fieldValues ...string) (bool, error) {
	tx := s.db.Where("ptype = ?", ptype)
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		tx = tx.Where(fmt.Sprintf("v%d = ?", fieldIndex+i), v)
	}
	res := tx.Delete(&CasbinRule{})
	if res.Error != nil {
		return false, authz.NewAdapterError("RemoveFilteredPolicy", res.Error)
	}
	return res.RowsAffected >= 1, nil
}

func (s *Store) ClearPolicy() error {
	if err := s.db.Where("1 = 1").Delete(&CasbinRule{}).Error; err != nil {
		return authz.NewAdapterError("ClearPolicy", err)
	}
	return nil
}
