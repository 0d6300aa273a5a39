package models

import "time"

// SysDomain 域（租户）。所有策略规则和判定都以域编码做限定。
type SysDomain struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Code      string    `gorm:"size:64;uniqueIndex" json:"code"`
	Name      string    `gorm:"size:64" json:"name"`
	Status    string    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SysDomain) TableName() string {
	return "sys_domain"
}
