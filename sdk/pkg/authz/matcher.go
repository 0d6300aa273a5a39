package authz

import "strings"

// PathMatch 判断请求路径是否匹配规则中的资源模式。
// 规则：两边都按 "/" 切分，段数必须一致；规则段要么与请求段完全相等，
// 要么是 ":xxx" 形式的路径参数占位符（匹配任意单个段）。
//
// "/user/:id" 匹配 "/user/42"，不匹配 "/user/42/extra" 或 "/user"。
func PathMatch(pattern, path string) bool {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")

	if len(patternSegs) != len(pathSegs) {
		return false
	}

	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return true
}

// ActionMatch 判断请求方法是否匹配规则中的方法。规则方法 "*" 匹配任意方法。
func ActionMatch(pattern, action string) bool {
	return pattern == "*" || pattern == action
}
