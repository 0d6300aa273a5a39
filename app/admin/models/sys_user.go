package models

import "time"

// 启用/禁用状态
const (
	StatusEnabled  = "ENABLED"
	StatusDisabled = "DISABLED"
)

// SysUser 系统用户
type SysUser struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:128" json:"-"` // bcrypt哈希
	NickName  string    `gorm:"size:64" json:"nickName"`
	Domain    string    `gorm:"size:64" json:"domain"` // 所属域编码
	Status    string    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SysUser) TableName() string {
	return "sys_user"
}
