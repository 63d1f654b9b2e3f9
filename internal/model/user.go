package model

import (
	"strings"
	"time"
)

type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
)

// Role строка справочника roles.
type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

const (
	RoleIDUser      int64 = 1
	RoleIDRecruiter int64 = 2
	RoleIDAdmin     int64 = 3
)

var roleNames = map[int64]string{
	RoleIDUser:      "USER",
	RoleIDRecruiter: "RECRUITER",
	RoleIDAdmin:     "ADMIN",
}

// RoleByID false для неизвестного id.
func RoleByID(id int64) (Role, bool) {
	name, ok := roleNames[id]
	return Role{ID: id, Name: name}, ok
}

// RoleByName регистр не важен.
func RoleByName(name string) (Role, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for id, roleName := range roleNames {
		if roleName == name {
			return Role{ID: id, Name: roleName}, true
		}
	}
	return Role{}, false
}

type User struct {
	ID           int64      `db:"id"`
	RoleID       *int64     `db:"role_id"`
	RoleName     *string    `db:"role_name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FullName     *string    `db:"full_name"`
	DateOfBirth  *string    `db:"date_of_birth"`
	Address      *string    `db:"address"`
	IsStudying   bool       `db:"is_studying"`
	Status       UserStatus `db:"status"`
	VerifyToken  *string    `db:"verify_token"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Roles роли для access токена; пусто, если роль неизвестна.
func (user *User) Roles() []string {
	if user.RoleName == nil || *user.RoleName == "" {
		return nil
	}
	return []string{*user.RoleName}
}

func (user *User) IsActive() bool {
	return user.Status == UserStatusActive
}

// UserInfo текущая учётная запись пользователя
// swagger:model
type UserInfo struct {
	ID       int64      `json:"id"`
	RoleID   *int64     `json:"roleId"`
	RoleName *string    `json:"roleName"`
	Email    string     `json:"email"`
	FullName *string    `json:"fullName,omitempty"`
	Status   UserStatus `json:"status"`
}

func NewUserInfo(user *User) *UserInfo {
	return &UserInfo{
		ID:       user.ID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
		Email:    user.Email,
		FullName: user.FullName,
		Status:   user.Status,
	}
}

// RegisterRequest тело POST /auth/register
// swagger:model
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=6,max=50"`
	FullName    *string `json:"fullName" validate:"omitempty,max=255"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	IsStudying  bool    `json:"isStudying"`
	RoleID      *int64  `json:"roleId"`
	RoleName    *string `json:"roleName"`
}

// LoginRequest тело POST /auth/login
// swagger:model
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
