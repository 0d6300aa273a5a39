package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/models"
	"github.com/soybean-go/admin-core/sdk/service"
)

// PolicySyncer 是同步服务对执行器的依赖面，差量写回只用到这三个方法。
type PolicySyncer interface {
	GetFilteredPolicy(fieldIndex int, fieldValues ...string) [][]string
	AddPolicies(rules [][]string) (bool, error)
	RemovePolicies(rules [][]string) (bool, error)
}

// SysAuthorization 把数据库里的期望状态同步到策略存储和关联表。
type SysAuthorization struct {
	service.Service
	Enforcer PolicySyncer
}

// AssignPermission 用端点集合整体替换角色在某域下的 p 规则。
// 只对差量做写入，期望与现状一致时不产生任何存储调用。
func (s *SysAuthorization) AssignPermission(domain, roleID string, permissionIDs []string) error {
	dom, role, err := s.checkDomainAndRole(domain, roleID)
	if err != nil {
		return err
	}

	var endpoints []models.SysEndpoint
	if len(permissionIDs) > 0 {
		if err := s.Orm.Where("id in ?", permissionIDs).Find(&endpoints).Error; err != nil {
			return err
		}
		if len(endpoints) != len(uniqueStrings(permissionIDs)) {
			return ErrPermissionsNotFound
		}
	}

	desired := make([][]string, 0, len(endpoints))
	for _, ep := range endpoints {
		desired = append(desired, []string{role.Code, dom.Code, ep.Path, ep.Method})
	}

	current := s.Enforcer.GetFilteredPolicy(0, role.Code, dom.Code)
	toAdd, toRemove := diffRules(current, desired)

	if len(toRemove) > 0 {
		if _, err := s.Enforcer.RemovePolicies(toRemove); err != nil {
			return err
		}
	}
	if len(toAdd) > 0 {
		if _, err := s.Enforcer.AddPolicies(toAdd); err != nil {
			return err
		}
	}
	return nil
}

// AssignRoutes 用菜单集合整体替换角色在某域下的 sys_role_menu 行。
func (s *SysAuthorization) AssignRoutes(domain, roleID string, menuIDs []int) error {
	dom, role, err := s.checkDomainAndRole(domain, roleID)
	if err != nil {
		return err
	}

	if len(menuIDs) > 0 {
		var count int64
		if err := s.Orm.Model(&models.SysMenu{}).Where("id in ?", menuIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(uniqueInts(menuIDs))) {
			return ErrRoutesNotFound
		}
	}

	var current []models.SysRoleMenu
	if err := s.Orm.Where("role_id = ? and domain = ?", role.ID, dom.Code).Find(&current).Error; err != nil {
		return err
	}

	desired := make(map[int]bool, len(menuIDs))
	for _, id := range menuIDs {
		desired[id] = true
	}
	existing := make(map[int]bool, len(current))
	var removeIDs []int64
	for _, row := range current {
		existing[row.MenuID] = true
		if !desired[row.MenuID] {
			removeIDs = append(removeIDs, row.ID)
		}
	}
	var toAdd []models.SysRoleMenu
	for id := range desired {
		if !existing[id] {
			toAdd = append(toAdd, models.SysRoleMenu{RoleID: role.ID, MenuID: id, Domain: dom.Code})
		}
	}
	if len(removeIDs) == 0 && len(toAdd) == 0 {
		return nil
	}

	return s.Orm.Transaction(func(tx *gorm.DB) error {
		if len(removeIDs) > 0 {
			if err := tx.Where("id in ?", removeIDs).Delete(&models.SysRoleMenu{}).Error; err != nil {
				return err
			}
		}
		if len(toAdd) > 0 {
			if err := tx.Create(&toAdd).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AssignUsers 用用户集合整体替换角色的 sys_user_role 行。
func (s *SysAuthorization) AssignUsers(roleID string, userIDs []string) error {
	var role models.SysRole
	if err := s.Orm.Where("id = ?", roleID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	if len(userIDs) > 0 {
		var count int64
		if err := s.Orm.Model(&models.SysUser{}).Where("id in ?", userIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(uniqueStrings(userIDs))) {
			return ErrUsersNotFound
		}
	}

	var current []models.SysUserRole
	if err := s.Orm.Where("role_id = ?", role.ID).Find(&current).Error; err != nil {
		return err
	}

	desired := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		desired[id] = true
	}
	existing := make(map[string]bool, len(current))
	var removeIDs []int64
	for _, row := range current {
		existing[row.UserID] = true
		if !desired[row.UserID] {
			removeIDs = append(removeIDs, row.ID)
		}
	}
	var toAdd []models.SysUserRole
	for id := range desired {
		if !existing[id] {
			toAdd = append(toAdd, models.SysUserRole{UserID: id, RoleID: role.ID})
		}
	}
	if len(removeIDs) == 0 && len(toAdd) == 0 {
		return nil
	}

	return s.Orm.Transaction(func(tx *gorm.DB) error {
		if len(removeIDs) > 0 {
			if err := tx.Where("id in ?", removeIDs).Delete(&models.SysUserRole{}).Error; err != nil {
				return err
			}
		}
		if len(toAdd) > 0 {
			if err := tx.Create(&toAdd).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SysAuthorization) checkDomainAndRole(domain, roleID string) (*models.SysDomain, *models.SysRole, error) {
	var dom models.SysDomain
	if err := s.Orm.Where("code = ?", domain).First(&dom).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDomainNotFound
		}
		return nil, nil, err
	}
	var role models.SysRole
	if err := s.Orm.Where("id = ?", roleID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, err
	}
	return &dom, &role, nil
}

// diffRules 求差量，current 里多余的删，desired 里缺少的加，相交部分不动。
func diffRules(current, desired [][]string) (toAdd, toRemove [][]string) {
	desiredKeys := make(map[string]bool, len(desired))
	for _, rule := range desired {
		desiredKeys[strings.Join(rule, "\x00")] = true
	}
	currentKeys := make(map[string]bool, len(current))
	for _, rule := range current {
		key := strings.Join(rule, "\x00")
		currentKeys[key] = true
		if !desiredKeys[key] {
			toRemove = append(toRemove, rule)
		}
	}
	for _, rule := range desired {
		if !currentKeys[strings.Join(rule, "\x00")] {
			toAdd = append(toAdd, rule)
		}
	}
	return toAdd, toRemove
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	var out []int
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
