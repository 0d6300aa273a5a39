package authz

// Filter 限定部分加载的规则范围：P 约束 ptype 以 "p" 开头的规则，
// G 约束 ptype 以 "g" 开头的规则。每个切片按 v0..v5 位置给出期望值，
// 空字符串表示该列不做约束。nil 切片表示完全跳过该类规则；
// 非 nil 空切片表示只按 ptype 前缀取全部。
type Filter struct {
	P []string
	G []string
}

// PolicyStore is the persistence boundary for policy rules. The Enforcer
// is storage-agnostic: any backend (relational, in-memory for tests)
// implements this interface. Every operation surfaces storage failures as
// an *AdapterError.
type PolicyStore interface {
	// LoadPolicy 返回全部规则，启动时用于填充内存模型。
	LoadPolicy() ([]PolicyRule, error)

	// LoadFilteredPolicy 返回与过滤器匹配的规则，用于部分重载。
	LoadFilteredPolicy(filter Filter) ([]PolicyRule, error)

	// SavePolicy 用给定规则集替换整个持久化集合。实现为按自然键幂等
	// upsert，随后删除未被覆盖到的行；对调用者而言是原子的。
	SavePolicy(rules []PolicyRule) error

	// AddPolicy 插入单条规则；规则已存在时视为成功（幂等）。
	AddPolicy(ptype string, rule []string) error

	// AddPolicies 逐条插入多条规则，每条独立幂等。
	AddPolicies(ptype string, rules [][]string) error

	// RemovePolicy 删除精确匹配全部字段的规则，返回是否恰好删除一行。
	RemovePolicy(ptype string, rule []string) (bool, error)

	// RemovePolicies 逐条删除多条规则。
	RemovePolicies(ptype string, rules [][]string) error

	// RemoveFilteredPolicy 删除 ptype 匹配且从 fieldIndex 起各非空字段
	// 精确匹配的所有行，空字段为通配。返回是否删除了至少一行。
	RemoveFilteredPolicy(ptype string, fieldIndex int, fieldValues ...string) (bool, error)

	// ClearPolicy 删除全部行，仅用于重置（测试、重新播种）。
	ClearPolicy() error
}
