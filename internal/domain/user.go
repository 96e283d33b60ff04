package domain

import "time"

// User is an account. Username and email are unique; PasswordHash is a bcrypt hash and never serialized.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(32);not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Role         string    `gorm:"column:role;type:varchar(16);not null;default:customer;check:chk_users_role,role IN ('admin','staff','customer')" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
