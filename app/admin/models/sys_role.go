package models

import "time"

// SysRole 系统角色。Code 是策略规则中的判定主体。
type SysRole struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Code        string    `gorm:"size:64;uniqueIndex" json:"code"`
	Name        string    `gorm:"size:64" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Status      string    `gorm:"size:16" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (SysRole) TableName() string {
	return "sys_role"
}
