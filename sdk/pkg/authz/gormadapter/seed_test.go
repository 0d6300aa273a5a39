package gormadapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soybean-go/admin-core/sdk/pkg/authz"
)

func TestDefaultPolicies_CoverMountedEndpoints(t *testing.T) {
	store := authz.NewMemoryStore()
	require.NoError(t, store.SavePolicy(DefaultPolicies()))
	e, err := authz.NewEnforcer(store)
	require.NoError(t, err)

	// 内置策略必须能放行服务实际挂载的受保护端点
	for _, path := range []string{
		"/api/v1/authorization/assign-permission",
		"/api/v1/authorization/assign-routes",
		"/api/v1/authorization/assign-users",
	} {
		ok, err := e.EnforceWithDomain(RoleSuper, BuiltinDomain, path, "PUT")
		require.NoError(t, err)
		assert.True(t, ok, "超级管理员应可访问 %s", path)
	}

	// 错误的方法和域照常拒绝
	ok, err := e.EnforceWithDomain(RoleSuper, BuiltinDomain, "/api/v1/authorization/assign-users", "POST")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.EnforceWithDomain(RoleSuper, "other", "/api/v1/authorization/assign-users", "PUT")
	require.NoError(t, err)
	assert.False(t, ok)
}
