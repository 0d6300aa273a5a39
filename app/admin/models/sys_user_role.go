package models

// SysUserRole 用户-角色关联，普通外键行，不是策略规则。
type SysUserRole struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID string `gorm:"size:64;index" json:"userId"`
	RoleID string `gorm:"size:64;index" json:"roleId"`
}

func (SysUserRole) TableName() string {
	return "sys_user_role"
}
