package authz

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// permEntry 是 p 规则在执行索引中的形态：资源模式 + 方法模式。
type permEntry struct {
	obj string
	act string
}

// Enforcer 是进程内唯一的策略判定与变更入口。内存中的规则集由读写锁
// 保护：Enforce 走读锁（任意并发），变更操作走写锁，并且持久化调用也在
// 写锁临界区内完成，保证任何读者都不会观察到内存与存储不一致的状态。
//
// Enforcer 的生命周期是显式的：进程启动时构造一个实例（从 PolicyStore
// 加载），通过共享句柄传给每个中间件和同步服务，不做全局单例。
type Enforcer struct {
	mu    sync.RWMutex
	store PolicyStore
	log   *zap.Logger

	domains bool // 是否按域建模（4列判定）；构造后不变，部署内不混用

	rules  map[string]PolicyRule          // 自然键 -> 规则，保证同 ptype 下元组唯一
	perms  map[string]map[string][]permEntry // domain -> role -> p规则索引
	groups *roleGraph                     // g规则继承图

	generation uint64 // 每次成功变更递增，失效外部匹配缓存恰好一次
}

// Option configures an Enforcer at construction time.
type Option func(*Enforcer)

// WithLogger 指定日志器，默认使用 zap.NewNop。
func WithLogger(l *zap.Logger) Option {
	return func(e *Enforcer) { e.log = l }
}

// WithoutDomains 切换为无域的三列判定模型（sub, obj, act）。
// 一个部署只能使用一种调用约定。
func WithoutDomains() Option {
	return func(e *Enforcer) { e.domains = false }
}

// NewEnforcer 构造并从存储加载全部策略。存储不可用时返回错误。
func NewEnforcer(store PolicyStore, opts ...Option) (*Enforcer, error) {
	e := &Enforcer{
		store:   store,
		log:     zap.NewNop(),
		domains: true,
		rules:   make(map[string]PolicyRule),
		perms:   make(map[string]map[string][]permEntry),
		groups:  newRoleGraph(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load initial policy: %w", err)
	}
	return e, nil
}

// Generation 返回变更代数。代数不变则任何外部匹配缓存仍然有效。
func (e *Enforcer) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// LoadPolicy 从存储全量重载，重建内存索引。这是 ErrInconsistentState 的
// 恢复路径，也在启动时调用。
func (e *Enforcer) LoadPolicy() error {
	rules, err := e.store.LoadPolicy()
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rebuildLocked(rules)
	e.generation++
	return nil
}

// rebuildLocked 用给定规则集替换全部内存状态。调用方持有写锁。
func (e *Enforcer) rebuildLocked(rules []PolicyRule) {
	e.rules = make(map[string]PolicyRule, len(rules))
	e.perms = make(map[string]map[string][]permEntry)
	e.groups.reset()
	for _, r := range rules {
		if _, ok := e.rules[r.Key()]; ok {
			continue // 存储中的重复元组只保留一份
		}
		e.applyLocked(r)
	}
}

// Enforce 无域判定：subject 对 object 执行 action 是否被允许。
// 纯内存计算，无副作用，可被任意多个读者并发调用。
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	if e.domains {
		return false, errors.New("enforcer is domain-scoped, use EnforceWithDomain")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enforceLocked("", subject, object, action), nil
}

// EnforceWithDomain 域内判定：subject 在 domain 中对 object 执行 action
// 是否被允许。
func (e *Enforcer) EnforceWithDomain(subject, domain, object, action string) (bool, error) {
	if !e.domains {
		return false, errors.New("enforcer is not domain-scoped, use Enforce")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enforceLocked(domain, subject, object, action), nil
}

func (e *Enforcer) enforceLocked(domain, subject, object, action string) bool {
	domainPerms := e.perms[domain]
	if domainPerms == nil {
		return false
	}
	for _, role := range e.groups.closure(domain, subject) {
		for _, p := range domainPerms[role] {
			if PathMatch(p.obj, object) && ActionMatch(p.act, action) {
				return true
			}
		}
	}
	return false
}

// AddPolicy 添加一条 p 规则。规则已存在时返回 (false, nil)（幂等成功）。
// 持久化失败时回滚内存变更并返回错误。
func (e *Enforcer) AddPolicy(values ...string) (bool, error) {
	return e.addRule(PTypePolicy, values)
}

// AddGroupingPolicy 添加一条 g 规则（角色继承）。
func (e *Enforcer) AddGroupingPolicy(values ...string) (bool, error) {
	return e.addRule(PTypeGrouping, values)
}

func (e *Enforcer) addRule(ptype string, values []string) (bool, error) {
	rule := NewRule(ptype, values...)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules[rule.Key()]; ok {
		return false, nil
	}

	e.applyLocked(rule)
	if err := e.store.AddPolicy(ptype, values); err != nil {
		e.revertLocked(rule)
		return false, err
	}
	e.generation++
	return true, nil
}

// AddPolicies 批量添加 p 规则，已存在的元素跳过。各元素独立落库，不跨
// 元素事务；需要原子性的调用方应通过同步服务的差量走最小变更。
func (e *Enforcer) AddPolicies(rules [][]string) (bool, error) {
	return e.addRules(PTypePolicy, rules)
}

// AddGroupingPolicies 批量添加 g 规则。
func (e *Enforcer) AddGroupingPolicies(rules [][]string) (bool, error) {
	return e.addRules(PTypeGrouping, rules)
}

func (e *Enforcer) addRules(ptype string, values [][]string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var added []PolicyRule
	var fresh [][]string
	for _, v := range values {
		rule := NewRule(ptype, v...)
		if _, ok := e.rules[rule.Key()]; ok {
			continue
		}
		e.applyLocked(rule)
		added = append(added, rule)
		fresh = append(fresh, v)
	}
	if len(added) == 0 {
		return false, nil
	}

	if err := e.store.AddPolicies(ptype, fresh); err != nil {
		for _, rule := range added {
			e.revertLocked(rule)
		}
		return false, e.resyncLocked(err)
	}
	e.generation++
	return true, nil
}

// RemovePolicy 删除精确匹配的 p 规则，返回是否删除。
func (e *Enforcer) RemovePolicy(values ...string) (bool, error) {
	return e.removeRule(PTypePolicy, values)
}

// RemoveGroupingPolicy 删除精确匹配的 g 规则。
func (e *Enforcer) RemoveGroupingPolicy(values ...string) (bool, error) {
	return e.removeRule(PTypeGrouping, values)
}

func (e *Enforcer) removeRule(ptype string, values []string) (bool, error) {
	rule := NewRule(ptype, values...)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules[rule.Key()]; !ok {
		return false, nil
	}

	e.revertLocked(rule)
	removed, err := e.store.RemovePolicy(ptype, values)
	if err != nil {
		e.applyLocked(rule)
		return false, err
	}
	if !removed {
		// 内存有而存储没有：已经分歧，记录并继续（内存现在与存储一致）
		e.log.Warn("策略在存储中不存在，内存与存储曾出现分歧",
			zap.String("ptype", ptype), zap.Strings("rule", values))
	}
	e.generation++
	return true, nil
}

// RemovePolicies 批量删除 p 规则。
func (e *Enforcer) RemovePolicies(rules [][]string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var removed []PolicyRule
	var present [][]string
	for _, v := range rules {
		rule := NewRule(PTypePolicy, v...)
		if _, ok := e.rules[rule.Key()]; !ok {
			continue
		}
		e.revertLocked(rule)
		removed = append(removed, rule)
		present = append(present, v)
	}
	if len(removed) == 0 {
		return false, nil
	}

	if err := e.store.RemovePolicies(PTypePolicy, present); err != nil {
		for _, rule := range removed {
			e.applyLocked(rule)
		}
		return false, e.resyncLocked(err)
	}
	e.generation++
	return true, nil
}

// RemoveFilteredPolicy 删除从 fieldIndex 起各非空字段匹配的全部 p 规则，
// 空字段为通配。支持"撤销该角色的所有权限"这类批量删除。
func (e *Enforcer) RemoveFilteredPolicy(fieldIndex int, fieldValues ...string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []PolicyRule
	for _, rule := range e.rules {
		if rule.PType == PTypePolicy && matchFields(rule, fieldIndex, fieldValues) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return false, nil
	}

	for _, rule := range matched {
		e.revertLocked(rule)
	}
	if _, err := e.store.RemoveFilteredPolicy(PTypePolicy, fieldIndex, fieldValues...); err != nil {
		for _, rule := range matched {
			e.applyLocked(rule)
		}
		return false, err
	}
	e.generation++
	return true, nil
}

// GetPolicy 返回全部 p 规则（去掉尾部空字段），顺序确定。
func (e *Enforcer) GetPolicy() [][]string {
	return e.GetFilteredPolicy(0)
}

// GetFilteredPolicy 返回从 fieldIndex 起各非空字段匹配的 p 规则视图，
// 供同步服务计算差量。
func (e *Enforcer) GetFilteredPolicy(fieldIndex int, fieldValues ...string) [][]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out [][]string
	for _, rule := range e.rules {
		if rule.PType == PTypePolicy && matchFields(rule, fieldIndex, fieldValues) {
			out = append(out, rule.TrimmedValues())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return out
}

// GetGroupingPolicy 返回全部 g 规则。
func (e *Enforcer) GetGroupingPolicy() [][]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out [][]string
	for _, rule := range e.rules {
		if rule.PType == PTypeGrouping {
			out = append(out, rule.TrimmedValues())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return out
}

// SavePolicy 将当前内存规则集整体写回存储（upsert + 清理多余行）。
func (e *Enforcer) SavePolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rules := make([]PolicyRule, 0, len(e.rules))
	for _, r := range e.rules {
		rules = append(rules, r)
	}
	return e.store.SavePolicy(rules)
}

// matchFields 从 fieldIndex 起逐列比较，空期望值不构成约束。
func matchFields(rule PolicyRule, fieldIndex int, fieldValues []string) bool {
	vals := rule.Values()
	for i, want := range fieldValues {
		if want == "" {
			continue
		}
		pos := fieldIndex + i
		if pos >= len(vals) || vals[pos] != want {
			return false
		}
	}
	return true
}

// applyLocked 将规则写入内存索引。调用方持有写锁。
func (e *Enforcer) applyLocked(rule PolicyRule) {
	e.rules[rule.Key()] = rule

	switch rule.PType {
	case PTypePolicy:
		domain, role, entry := e.permIndex(rule)
		domainPerms, ok := e.perms[domain]
		if !ok {
			domainPerms = make(map[string][]permEntry)
			e.perms[domain] = domainPerms
		}
		domainPerms[role] = append(domainPerms[role], entry)
	case PTypeGrouping:
		domain, child, parent := e.groupIndex(rule)
		e.groups.add(domain, child, parent)
	}
}

// revertLocked 将规则从内存索引中移除。调用方持有写锁。
func (e *Enforcer) revertLocked(rule PolicyRule) {
	delete(e.rules, rule.Key())

	switch rule.PType {
	case PTypePolicy:
		domain, role, entry := e.permIndex(rule)
		entries := e.perms[domain][role]
		for i, p := range entries {
			if p == entry {
				e.perms[domain][role] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(e.perms[domain][role]) == 0 {
			delete(e.perms[domain], role)
			if len(e.perms[domain]) == 0 {
				delete(e.perms, domain)
			}
		}
	case PTypeGrouping:
		domain, child, parent := e.groupIndex(rule)
		e.groups.remove(domain, child, parent)
	}
}

// permIndex 按建模方式解出 p 规则的索引列。
// 有域：p = (role, domain, obj, act)；无域：p = (role, obj, act)。
func (e *Enforcer) permIndex(rule PolicyRule) (domain, role string, entry permEntry) {
	if e.domains {
		return rule.V1, rule.V0, permEntry{obj: rule.V2, act: rule.V3}
	}
	return "", rule.V0, permEntry{obj: rule.V1, act: rule.V2}
}

// groupIndex 按建模方式解出 g 规则的索引列。
// 有域：g = (child, parent, domain)；无域：g = (child, parent)。
func (e *Enforcer) groupIndex(rule PolicyRule) (domain, child, parent string) {
	if e.domains {
		return rule.V2, rule.V0, rule.V1
	}
	return "", rule.V0, rule.V1
}

// resyncLocked 在批量持久化半途失败后尝试全量重载以消除可能的前缀写入。
// 重载也失败时内存与存储确已分歧，大声记录并标记 ErrInconsistentState。
func (e *Enforcer) resyncLocked(cause error) error {
	rules, err := e.store.LoadPolicy()
	if err != nil {
		e.log.Error("批量变更失败且重载失败，内存与存储已分歧",
			zap.NamedError("cause", cause), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInconsistentState, cause)
	}
	e.rebuildLocked(rules)
	e.generation++
	return cause
}
