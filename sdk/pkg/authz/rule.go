package authz

import "strings"

// 策略类型
const (
	PTypePolicy   = "p" // 权限规则：角色、域、资源路径、HTTP方法
	PTypeGrouping = "g" // 角色继承规则：子角色、父角色、域
)

// PolicyRule 表示策略表中的一行规则：ptype 判别符加上至多六个位置参数。
// 空位置用空字符串表示，规则中不存在 null。
type PolicyRule struct {
	PType string
	V0    string
	V1    string
	V2    string
	V3    string
	V4    string
	V5    string
}

// NewRule builds a PolicyRule from ptype and positional values filled
// left to right. Values beyond V5 are ignored.
func NewRule(ptype string, values ...string) PolicyRule {
	r := PolicyRule{PType: ptype}
	fields := []*string{&r.V0, &r.V1, &r.V2, &r.V3, &r.V4, &r.V5}
	for i, v := range values {
		if i >= len(fields) {
			break
		}
		*fields[i] = v
	}
	return r
}

// Values 返回 v0..v5 的完整切片（包含尾部空字段）。
func (r PolicyRule) Values() []string {
	return []string{r.V0, r.V1, r.V2, r.V3, r.V4, r.V5}
}

// TrimmedValues 返回去掉尾部空字段后的位置参数。
func (r PolicyRule) TrimmedValues() []string {
	vals := r.Values()
	end := len(vals)
	for end > 0 && vals[end-1] == "" {
		end--
	}
	return vals[:end]
}

// Key returns the natural key of the rule: the full 7-tuple joined with a
// separator that cannot appear in policy values. Two rules are the same
// rule iff their keys are equal.
func (r PolicyRule) Key() string {
	return strings.Join([]string{r.PType, r.V0, r.V1, r.V2, r.V3, r.V4, r.V5}, "\x00")
}
