package models

// SysRoleMenu 角色-路由关联，普通外键行，不是策略规则。域字段让同一
// 角色在不同域可以拥有不同路由。
type SysRoleMenu struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID string `gorm:"size:64;index" json:"roleId"`
	MenuID int    `gorm:"index" json:"menuId"`
	Domain string `gorm:"size:64" json:"domain"`
}

func (SysRoleMenu) TableName() string {
	return "sys_role_menu"
}
