package service

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soybean-go/admin-core/app/admin/models"
	"github.com/soybean-go/admin-core/sdk/pkg/authz"
	"github.com/soybean-go/admin-core/sdk/service"
)

func TestDiffRules_OnlyTouchesChangedRules(t *testing.T) {
	current := [][]string{
		{"editor", "acme", "/a", "GET"},
		{"editor", "acme", "/b", "GET"},
		{"editor", "acme", "/c", "GET"},
	}
	desired := [][]string{
		{"editor", "acme", "/b", "GET"},
		{"editor", "acme", "/c", "GET"},
		{"editor", "acme", "/d", "GET"},
	}

	toAdd, toRemove := diffRules(current, desired)
	assert.Equal(t, [][]string{{"editor", "acme", "/d", "GET"}}, toAdd)
	assert.Equal(t, [][]string{{"editor", "acme", "/a", "GET"}}, toRemove)
}

func TestDiffRules_NoChange(t *testing.T) {
	rules := [][]string{
		{"editor", "acme", "/a", "GET"},
		{"editor", "acme", "/b", "POST"},
	}
	toAdd, toRemove := diffRules(rules, rules)
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)
}

func TestDiffRules_FromEmpty(t *testing.T) {
	desired := [][]string{{"editor", "acme", "/a", "GET"}}
	toAdd, toRemove := diffRules(nil, desired)
	assert.Equal(t, desired, toAdd)
	assert.Empty(t, toRemove)
}

// recordingSyncer 包装真实执行器并记录批量调用次数。
type recordingSyncer struct {
	*authz.Enforcer
	addCalls    int
	removeCalls int
}

func (r *recordingSyncer) AddPolicies(rules [][]string) (bool, error) {
	r.addCalls++
	return r.Enforcer.AddPolicies(rules)
}

func (r *recordingSyncer) RemovePolicies(rules [][]string) (bool, error) {
	r.removeCalls++
	return r.Enforcer.RemovePolicies(rules)
}

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

func seededService(t *testing.T) (*SysAuthorization, *recordingSyncer) {
	t.Helper()
	db := realTestDB(t)
	require.NoError(t, db.AutoMigrate(
		&models.SysDomain{}, &models.SysRole{}, &models.SysEndpoint{},
		&models.SysMenu{}, &models.SysRoleMenu{}, &models.SysUser{}, &models.SysUserRole{},
	))
	for _, m := range []interface{}{
		&models.SysRoleMenu{}, &models.SysUserRole{}, &models.SysEndpoint{},
		&models.SysMenu{}, &models.SysRole{}, &models.SysDomain{}, &models.SysUser{},
	} {
		require.NoError(t, db.Where("1 = 1").Delete(m).Error)
	}

	require.NoError(t, db.Create(&models.SysDomain{ID: "d1", Code: "acme", Name: "Acme", Status: models.StatusEnabled}).Error)
	require.NoError(t, db.Create(&models.SysRole{ID: "r1", Code: "editor", Name: "Editor", Status: models.StatusEnabled}).Error)
	require.NoError(t, db.Create(&[]models.SysEndpoint{
		{ID: "e1", Path: "/article/:id", Method: "GET"},
		{ID: "e2", Path: "/article", Method: "POST"},
		{ID: "e3", Path: "/article/:id", Method: "DELETE"},
	}).Error)

	enf, err := authz.NewEnforcer(authz.NewMemoryStore())
	require.NoError(t, err)
	syncer := &recordingSyncer{Enforcer: enf}

	return &SysAuthorization{
		Service:  service.Service{Orm: db, Log: zap.NewNop()},
		Enforcer: syncer,
	}, syncer
}

func TestAssignPermission_SyncsDiffOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	s, syncer := seededService(t)

	require.NoError(t, s.AssignPermission("acme", "r1", []string{"e1", "e2"}))
	assert.Equal(t, [][]string{
		{"editor", "acme", "/article", "POST"},
		{"editor", "acme", "/article/:id", "GET"},
	}, syncer.GetFilteredPolicy(0, "editor", "acme"))

	// 期望集合不变时不触发任何写入
	before := syncer.Generation()
	require.NoError(t, s.AssignPermission("acme", "r1", []string{"e1", "e2"}))
	assert.Equal(t, before, syncer.Generation())
	assert.Equal(t, 1, syncer.addCalls)
	assert.Zero(t, syncer.removeCalls)

	// e1 保留，e2 撤销，e3 新增
	require.NoError(t, s.AssignPermission("acme", "r1", []string{"e1", "e3"}))
	assert.Equal(t, [][]string{
		{"editor", "acme", "/article/:id", "DELETE"},
		{"editor", "acme", "/article/:id", "GET"},
	}, syncer.GetFilteredPolicy(0, "editor", "acme"))
	assert.Equal(t, 2, syncer.addCalls)
	assert.Equal(t, 1, syncer.removeCalls)
}

func TestAssignPermission_StrictNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	s, _ := seededService(t)

	assert.ErrorIs(t, s.AssignPermission("nope", "r1", nil), ErrDomainNotFound)
	assert.ErrorIs(t, s.AssignPermission("acme", "nope", nil), ErrRoleNotFound)
	assert.ErrorIs(t, s.AssignPermission("acme", "r1", []string{"e1", "missing"}), ErrPermissionsNotFound)
}

func TestAssignRoutes_ReplacesJoinRows(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	s, _ := seededService(t)
	require.NoError(t, s.Orm.Create(&[]models.SysMenu{
		{ID: 1, Name: "home", Path: "/home"},
		{ID: 2, Name: "manage", Path: "/manage"},
		{ID: 3, Name: "about", Path: "/about"},
	}).Error)

	require.NoError(t, s.AssignRoutes("acme", "r1", []int{1, 2}))
	require.NoError(t, s.AssignRoutes("acme", "r1", []int{2, 3}))

	var rows []models.SysRoleMenu
	require.NoError(t, s.Orm.Where("role_id = ? and domain = ?", "r1", "acme").Order("menu_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].MenuID)
	assert.Equal(t, 3, rows[1].MenuID)

	assert.ErrorIs(t, s.AssignRoutes("acme", "r1", []int{99}), ErrRoutesNotFound)
}

func TestAssignUsers_ReplacesJoinRows(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过集成测试（使用 -short 标志）")
	}
	s, _ := seededService(t)
	require.NoError(t, s.Orm.Create(&[]models.SysUser{
		{ID: "u1", Username: "alice", Domain: "acme", Status: models.StatusEnabled},
		{ID: "u2", Username: "bob", Domain: "acme", Status: models.StatusEnabled},
	}).Error)

	require.NoError(t, s.AssignUsers("r1", []string{"u1"}))
	require.NoError(t, s.AssignUsers("r1", []string{"u2"}))

	var rows []models.SysUserRole
	require.NoError(t, s.Orm.Where("role_id = ?", "r1").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "u2", rows[0].UserID)

	assert.ErrorIs(t, s.AssignUsers("r1", []string{"ghost"}), ErrUsersNotFound)
	assert.ErrorIs(t, s.AssignUsers("missing-role", nil), ErrRoleNotFound)
}
