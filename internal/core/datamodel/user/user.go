package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Country      string     `gorm:"column:country"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	RoleID       int64      `gorm:"column:role_id;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission links a role to a permission. The (role_id, permission_id)
// pair carries a unique index; the legacy schema tolerated duplicates and the
// projector still deduplicates on read.
type RolePermission struct {
	ID           int64 `gorm:"primaryKey"`
	RoleID       int64 `gorm:"column:role_id;not null;uniqueIndex:idx_role_permission"`
	PermissionID int64 `gorm:"column:permission_id;not null;uniqueIndex:idx_role_permission"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
