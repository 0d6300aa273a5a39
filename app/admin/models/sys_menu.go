package models

import "time"

// SysMenu 前端路由（菜单）
type SysMenu struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	Path      string    `gorm:"size:255" json:"path"`
	ParentID  int       `json:"parentId"`
	Sequence  int       `json:"sequence"`
	Status    string    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SysMenu) TableName() string {
	return "sys_menu"
}
