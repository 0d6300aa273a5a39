package gormadapter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soybean-go/admin-core/sdk/pkg/authz"
)

// realTestDB connects to a test database (set TEST_DB_DSN to override).
// Integration tests are skipped when no database is reachable.
func realTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/admin_core_test?charset=utf8mb4&parseTime=True&loc=Local"
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("无法连接到测试数据库: %v (跳过集成测试)", err)
		return nil
	}
	return db
}

func freshStore(t *testing.T) *Store {
	t.Helper()
	db := realTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)
	require.NoError(t, store.ClearPolicy())
	return store
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.ErrorIs(t, err, authz.ErrStoreUnavailable)
}

func TestStore_AddLoadRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	store := freshStore(t)

	require.NoError(t, store.AddPolicy("p", []string{"admin", "built-in", "/user/:id", "GET"}))
	// 幂等：重复添加不产生第二行
	require.NoError(t, store.AddPolicy("p", []string{"admin", "built-in", "/user/:id", "GET"}))

	rules, err := store.LoadPolicy()
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	removed, err := store.RemovePolicy("p", []string{"admin", "built-in", "/user/:id", "GET"})
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.RemovePolicy("p", []string{"admin", "built-in", "/user/:id", "GET"})
	require.NoError(t, err)
	assert.False(t, removed, "第二次删除应无行受影响")
}

func TestStore_SavePolicyRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	store := freshStore(t)

	seed := []authz.PolicyRule{
		authz.NewRule("p", "admin", "built-in", "/user/:id", "GET"),
		authz.NewRule("p", "editor", "built-in", "/role/list", "GET"),
		authz.NewRule("g", "editor", "admin", "built-in"),
	}
	require.NoError(t, store.SavePolicy(seed))

	loaded, err := store.LoadPolicy()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	// save_all(load_all()) 集合不变
	require.NoError(t, store.SavePolicy(loaded))
	reloaded, err := store.LoadPolicy()
	require.NoError(t, err)
	assert.Len(t, reloaded, 3)

	// 缩小集合：未覆盖到的行被清理
	require.NoError(t, store.SavePolicy(seed[:1]))
	reloaded, err = store.LoadPolicy()
	require.NoError(t, err)
	assert.Len(t, reloaded, 1)
}

func TestStore_LoadFilteredPolicy(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	store := freshStore(t)

	require.NoError(t, store.SavePolicy([]authz.PolicyRule{
		authz.NewRule("p", "admin", "built-in", "/user/:id", "GET"),
		authz.NewRule("p", "admin", "other", "/user/:id", "GET"),
		authz.NewRule("g", "editor", "admin", "built-in"),
	}))

	rules, err := store.LoadFilteredPolicy(authz.Filter{P: []string{"", "built-in"}})
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	rules, err = store.LoadFilteredPolicy(authz.Filter{
		P: []string{"", "built-in"},
		G: []string{"editor"},
	})
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestStore_RemoveFilteredPolicy(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	store := freshStore(t)

	require.NoError(t, store.SavePolicy([]authz.PolicyRule{
		authz.NewRule("p", "admin", "built-in", "/user/:id", "GET"),
		authz.NewRule("p", "admin", "built-in", "/role/list", "GET"),
		authz.NewRule("p", "editor", "built-in", "/user/:id", "GET"),
	}))

	removed, err := store.RemoveFilteredPolicy("p", 0, "admin", "built-in")
	require.NoError(t, err)
	assert.True(t, removed)

	rules, err := store.LoadPolicy()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "editor", rules[0].V0)
}

func TestSeedBuiltinPolicies(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	store := freshStore(t)

	require.NoError(t, SeedBuiltinPolicies(store.db))
	rules, err := store.LoadPolicy()
	require.NoError(t, err)
	assert.Len(t, rules, len(DefaultPolicies()))

	// 表非空时重复播种无副作用
	require.NoError(t, SeedBuiltinPolicies(store.db))
	rules, err = store.LoadPolicy()
	require.NoError(t, err)
	assert.Len(t, rules, len(DefaultPolicies()))
}
