package auth

import "github.com/yishak-cs/cafe-pos/internal/models"

// Permission names one guarded capability of the API.
type Permission string

const (
	TablesRead      Permission = "tables:read"
	TablesLayout    Permission = "tables:layout"
	TablesManage    Permission = "tables:manage"
	MenuRead        Permission = "menu:read"
	MenuManage      Permission = "menu:manage"
	InventoryRead   Permission = "inventory:read"
	InventoryManage Permission = "inventory:manage"
	OrdersRead      Permission = "orders:read"
	OrdersCreate    Permission = "orders:create"
	OrdersStatus    Permission = "orders:status"
	OrdersCancel    Permission = "orders:cancel"
	InvoicesRead    Permission = "invoices:read"
	InvoicesCreate  Permission = "invoices:create"
	InvoicesUpdate  Permission = "invoices:update"
	InvoicesDelete  Permission = "invoices:delete"
	UsersManage     Permission = "users:manage"
	ReportsRead     Permission = "reports:read"
)

var (
	everyone   = models.Roles
	floorStaff = []models.Role{models.RoleAdmin, models.RoleSupervisor, models.RoleManager, models.RoleWaiter}
	management = []models.Role{models.RoleAdmin, models.RoleSupervisor, models.RoleManager}
	billing    = []models.Role{models.RoleAdmin, models.RoleSupervisor, models.RoleManager, models.RoleCashier}
)

// Policy is the single source of truth for who may do what.
var Policy = map[Permission][]models.Role{
	TablesRead:      everyone,
	TablesLayout:    floorStaff,
	TablesManage:    management,
	MenuRead:        everyone,
	MenuManage:      management,
	InventoryRead:   management,
	InventoryManage: {models.RoleAdmin, models.RoleManager},
	OrdersRead:      everyone,
	OrdersCreate:    floorStaff,
	OrdersStatus:    everyone,
	OrdersCancel:    management,
	InvoicesRead:    billing,
	InvoicesCreate:  billing,
	InvoicesUpdate:  {models.RoleAdmin, models.RoleManager, models.RoleCashier},
	InvoicesDelete:  {models.RoleAdmin},
	UsersManage:     {models.RoleAdmin},
	ReportsRead:     {models.RoleAdmin, models.RoleManager},
}

// Allowed reports whether role holds perm. Unknown permissions are denied.
func Allowed(role models.Role, perm Permission) bool {
	for _, r := range Policy[perm] {
		if r == role {
			return true
		}
	}
	return false
}
