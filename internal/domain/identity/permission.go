package identity

import (
	"sort"
	"strings"
)

// Role is a fixed role code. Every role maps to a static permission set
// through the lookup table below.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleCashier    Role = "cashier"
	RoleViewer     Role = "viewer"
)

// Permission actions
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resources guarded by permissions
const (
	ResourceClient       = "client"
	ResourceVendor       = "vendor"
	ResourceProduct      = "product"
	ResourceStock        = "stock"
	ResourceInvoice      = "invoice"
	ResourceQuote        = "quote"
	ResourceReminder     = "reminder"
	ResourceCash         = "cash"
	ResourceSubscription = "subscription"
	ResourceMarket       = "market"
	ResourceExpense      = "expense"
	ResourceTax          = "tax"
	ResourceAudit        = "audit"
	ResourceUser         = "user"
	ResourceBackup       = "backup"
	ResourceForecast     = "forecast"
	ResourceSettings     = "settings"
	ResourceReport       = "report"
	ResourceBilling      = "billing"
	ResourceNotification = "notification"
)

// extraActions lists the non-CRUD actions per resource
var extraActions = map[string][]string{
	ResourceStock:   {"receive", "issue", "adjust"},
	ResourceInvoice: {"send", "pay", "cancel", "export"},
	ResourceQuote:   {"send", "convert", "export"},
	ResourceReminder: {
		"send",
	},
	ResourceCash:         {"open", "close", "record"},
	ResourceTax:          {"generate", "submit"},
	ResourceBackup:       {"run", "download"},
	ResourceForecast:     {"run"},
	ResourceBilling:      {"generate"},
	ResourceNotification: {"send"},
}

var allResources = []string{
	ResourceClient, ResourceVendor, ResourceProduct, ResourceStock, ResourceInvoice,
	ResourceQuote, ResourceReminder, ResourceCash, ResourceSubscription, ResourceMarket,
	ResourceExpense, ResourceTax, ResourceAudit, ResourceUser, ResourceBackup,
	ResourceForecast, ResourceSettings, ResourceReport, ResourceBilling, ResourceNotification,
}

// Perm builds a permission code "resource:action"
func Perm(resource, action string) string {
	return resource + ":" + action
}

func crud(resource string) []string {
	return []string{
		Perm(resource, ActionRead),
		Perm(resource, ActionCreate),
		Perm(resource, ActionUpdate),
		Perm(resource, ActionDelete),
	}
}

func full(resource string) []string {
	perms := crud(resource)
	for _, action := range extraActions[resource] {
		perms = append(perms, Perm(resource, action))
	}
	return perms
}

func readOnly(resources ...string) []string {
	perms := make([]string, 0, len(resources))
	for _, r := range resources {
		perms = append(perms, Perm(r, ActionRead))
	}
	return perms
}

var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[Role]map[string]struct{} {
	table := map[Role][]string{}

	var admin []string
	for _, r := range allResources {
		admin = append(admin, full(r)...)
	}
	table[RoleAdmin] = admin

	var manager []string
	for _, r := range allResources {
		switch r {
		case ResourceUser:
			manager = append(manager, Perm(r, ActionRead))
		case ResourceBackup:
			manager = append(manager, Perm(r, ActionRead), Perm(r, "run"), Perm(r, "download"))
		default:
			manager = append(manager, full(r)...)
		}
	}
	table[RoleManager] = manager

	accountant := readOnly(ResourceClient, ResourceVendor, ResourceProduct, ResourceStock,
		ResourceCash, ResourceSubscription, ResourceMarket, ResourceAudit, ResourceSettings)
	for _, r := range []string{ResourceInvoice, ResourceQuote, ResourceReminder, ResourceExpense,
		ResourceTax, ResourceForecast, ResourceReport, ResourceBilling, ResourceNotification} {
		accountant = append(accountant, full(r)...)
	}
	table[RoleAccountant] = accountant

	cashier := readOnly(ResourceProduct, ResourceStock, ResourceQuote, ResourceSettings)
	cashier = append(cashier, full(ResourceCash)...)
	cashier = append(cashier,
		Perm(ResourceClient, ActionRead), Perm(ResourceClient, ActionCreate),
		Perm(ResourceInvoice, ActionRead), Perm(ResourceInvoice, ActionCreate),
		Perm(ResourceInvoice, "pay"), Perm(ResourceInvoice, "export"),
	)
	table[RoleCashier] = cashier

	table[RoleViewer] = readOnly(ResourceClient, ResourceVendor, ResourceProduct, ResourceStock,
		ResourceInvoice, ResourceQuote, ResourceReminder, ResourceCash, ResourceSubscription,
		ResourceMarket, ResourceExpense, ResourceTax, ResourceReport, ResourceSettings)

	out := make(map[Role]map[string]struct{}, len(table))
	for role, perms := range table {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		out[role] = set
	}
	return out
}

// ParseRole validates a role code
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rolePermissions[role]; !ok {
		return "", invalidRoleError(s)
	}
	return role, nil
}

// Roles returns every known role in a stable order
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleAccountant, RoleCashier, RoleViewer}
}

// IsValid reports whether the role is part of the lookup table
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// PermissionsFor returns the sorted permission codes granted to the role,
// none for an unknown role
func PermissionsFor(role Role) []string {
	set := rolePermissions[role]
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// HasPermission reports whether the role grants the permission code
func HasPermission(role Role, code string) bool {
	_, ok := rolePermissions[role][code]
	return ok
}

// Resources returns every resource known to the permission table
func Resources() []string {
	out := make([]string, len(allResources))
	copy(out, allResources)
	return out
}
