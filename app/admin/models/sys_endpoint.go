package models

import "time"

// SysEndpoint 可授权的API端点，path+method 即策略规则中的资源与动作。
type SysEndpoint struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Path       string    `gorm:"size:255" json:"path"`
	Method     string    `gorm:"size:16" json:"method"`
	Controller string    `gorm:"size:128" json:"controller"`
	Summary    string    `gorm:"size:255" json:"summary"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (SysEndpoint) TableName() string {
	return "sys_endpoint"
}
