package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleOperator   = "OPERATOR"
)

// User is a dashboard account. An OPERATOR with a non-nil AccessID only
// sees its own gate.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null" binding:"required,max=50"`
	Password  string    `json:"password" gorm:"type:varchar(100);not null" binding:"required,min=4"`
	Email     *string   `json:"email" gorm:"type:varchar(100);uniqueIndex" binding:"omitempty,email"`
	AccessID  *string   `json:"access_id" gorm:"type:varchar(36)"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:OPERATOR" binding:"omitempty,oneof=SUPER_ADMIN ADMIN OPERATOR"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	Access    *Access   `json:"-" gorm:"foreignKey:AccessID;references:ID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	AccessID   *string   `json:"access_id"`
	AccessName string    `json:"access_name,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AccessID:  u.AccessID,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.Access != nil {
		resp.AccessName = u.Access.Name
	}
	return resp
}
