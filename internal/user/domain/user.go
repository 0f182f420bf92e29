package domain

import (
	"context"
	"time"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
)

// Permissions checked by the HTTP layer.
const (
	PermManageUsers      = "users:manage"
	PermManageInventory  = "inventory:manage"
	PermManageCatalog    = "catalog:manage"
	PermCreateWorkOrders = "work_orders:create"
	PermEditWorkOrders   = "work_orders:edit"
	PermDeleteWorkOrders = "work_orders:delete"
	PermManagePrograms   = "programs:manage"
	PermManageWorkflows  = "workflows:manage"
)

// Role is a named permission set.
type Role struct {
	ID                  uint   `json:"id" gorm:"primaryKey"`
	Name                string `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description         string `json:"description" gorm:"size:200"`
	CanManageUsers      bool   `json:"can_manage_users"`
	CanManageInventory  bool   `json:"can_manage_inventory"`
	CanManageCatalog    bool   `json:"can_manage_catalog"`
	CanCreateWorkOrders bool   `json:"can_create_work_orders"`
	CanEditWorkOrders   bool   `json:"can_edit_work_orders"`
	CanDeleteWorkOrders bool   `json:"can_delete_work_orders"`
	CanManagePrograms   bool   `json:"can_manage_programs"`
	CanManageWorkflows  bool   `json:"can_manage_workflows"`
}

func (Role) TableName() string { return "user_roles" }

// Permissions lists the permission names granted by the role's flags.
func (r *Role) Permissions() []string {
	var perms []string
	add := func(ok bool, p string) {
		if ok {
			perms = append(perms, p)
		}
	}
	add(r.CanManageUsers, PermManageUsers)
	add(r.CanManageInventory, PermManageInventory)
	add(r.CanManageCatalog, PermManageCatalog)
	add(r.CanCreateWorkOrders, PermCreateWorkOrders)
	add(r.CanEditWorkOrders, PermEditWorkOrders)
	add(r.CanDeleteWorkOrders, PermDeleteWorkOrders)
	add(r.CanManagePrograms, PermManagePrograms)
	add(r.CanManageWorkflows, PermManageWorkflows)
	return perms
}

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string         `json:"-" gorm:"size:100;not null"`
	FullName     string         `json:"full_name" gorm:"size:100"`
	Email        string         `json:"email" gorm:"size:100"`
	RoleID       uint           `json:"role_id" gorm:"not null"`
	Role         *Role          `json:"role,omitempty"`
	GroupID      *uint          `json:"group_id"`
	Group        *catalog.Group `json:"group,omitempty"`
	IsAdmin      bool           `json:"is_admin"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
}

func (User) TableName() string { return "users" }

// Permissions returns the role permissions; admins are checked separately.
func (u *User) Permissions() []string {
	if u.Role == nil {
		return nil
	}
	return u.Role.Permissions()
}

// Models lists the tables owned by this module in migration order.
func Models() []interface{} {
	return []interface{}{&Role{}, &User{}}
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error

	CreateRole(ctx context.Context, role *Role) error
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	RoleExists(ctx context.Context, id uint) (bool, error)
}
