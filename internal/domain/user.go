package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole представляет роль сотрудника в системе
type UserRole string

const (
	RoleAdmin    UserRole = "admin"    // Администратор системы
	RoleManager  UserRole = "manager"  // Менеджер автопарка
	RoleEmployee UserRole = "employee" // Сотрудник приемки / выдачи
)

// User - сотрудник, работающий с панелью управления автопарком
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Никогда не возвращаем в JSON
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         UserRole   `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageFleet проверяет, может ли пользователь удалять записи и менять справочные данные
func (u *User) CanManageFleet() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// Validate проверяет корректность данных пользователя
func (u *User) Validate() error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(u.FullName) == "" {
		return ErrInvalidUserData
	}
	if u.Role != RoleAdmin && u.Role != RoleManager && u.Role != RoleEmployee {
		return ErrInvalidRole
	}
	return nil
}
