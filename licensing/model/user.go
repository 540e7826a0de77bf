package model

import "time"

type AdminUser struct {
	ID           int        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"column:username;size:255;not null;unique" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	Email        *string    `gorm:"column:email;size:255" json:"email"`
	Role         string     `gorm:"column:role;size:50;not null;default:admin" json:"role"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastLogin    *time.Time `gorm:"column:last_login" json:"last_login"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
