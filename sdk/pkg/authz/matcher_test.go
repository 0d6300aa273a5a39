package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"literal equal", "/user/list", "/user/list", true},
		{"literal not equal", "/user/list", "/role/list", false},
		{"param matches number segment", "/user/:id", "/user/42", true},
		{"param matches text segment", "/user/:id", "/user/abc", true},
		{"extra segment does not match", "/user/:id", "/user/42/extra", false},
		{"missing segment does not match", "/user/:id", "/user", false},
		{"param in the middle", "/domain/:id/users", "/domain/7/users", true},
		{"param does not span segments", "/domain/:id/users", "/domain/7/8/users", false},
		{"root", "/", "/", true},
		{"empty segment participates in equality", "/user/", "/user", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PathMatch(tt.pattern, tt.path),
				"PathMatch(%q, %q)", tt.pattern, tt.path)
		})
	}
}

func TestActionMatch(t *testing.T) {
	assert.True(t, ActionMatch("GET", "GET"))
	assert.False(t, ActionMatch("GET", "POST"))
	// 规则方法 "*" 匹配任意方法
	assert.True(t, ActionMatch("*", "DELETE"))
	// 请求方法 "*" 没有特殊含义
	assert.False(t, ActionMatch("GET", "*"))
}
