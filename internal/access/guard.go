// Package access decides whether a session may see a staff or admin surface.
package access

import (
	"github.com/MarcusAlienx/casanala/internal/enum"
)

// Session is the resolved identity of a request.
type Session struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email,omitempty"`
	Role   enum.Role `json:"role"`
}

type Outcome string

const (
	OutcomeLoading Outcome = "loading"
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

var (
	HomeLink  = Link{Label: "Volver al inicio", Href: "/"}
	LoginLink = Link{Label: "Iniciar sesión", Href: "/login"}
)

// Decision is what a guarded surface renders.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
	Links   []Link  `json:"links,omitempty"`
}

// Decide is the pure guard policy. While the session is still resolving the
// answer is always loading, so protected content never flashes.
func Decide(resolving bool, s *Session, allowed []enum.Role) Decision {
	if resolving {
		return Decision{Outcome: OutcomeLoading}
	}
	if s != nil && hasRole(allowed, s.Role) {
		return Decision{Outcome: OutcomeGranted}
	}
	d := Decision{
		Outcome: OutcomeDenied,
		Message: "Acceso Denegado",
		Links:   []Link{HomeLink},
	}
	if s == nil {
		d.Links = append(d.Links, LoginLink)
	}
	return d
}

func hasRole(allowed []enum.Role, r enum.Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

// Page names a guarded surface.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageKitchen   Page = "kitchen"
	PageDelivery  Page = "delivery"
	PagePickup    Page = "pickup"
	PageWaiter    Page = "waiter"
	PageOrders    Page = "orders"
	PageMenu      Page = "menu"
	PageInventory Page = "inventory"
	PageSettings  Page = "settings"
	PageUsers     Page = "users"
)

var policies = map[Page][]enum.Role{
	PageDashboard: {enum.RoleAdmin, enum.RoleKitchen, enum.RoleWaiter},
	PageKitchen:   {enum.RoleAdmin, enum.RoleKitchen},
	PageDelivery:  {enum.RoleAdmin, enum.RoleWaiter},
	PagePickup:    {enum.RoleAdmin, enum.RoleWaiter},
	PageWaiter:    {enum.RoleAdmin, enum.RoleWaiter},
	PageOrders:    {enum.RoleAdmin, enum.RoleKitchen, enum.RoleWaiter},
	PageMenu:      {enum.RoleAdmin},
	PageInventory: {enum.RoleAdmin},
	PageSettings:  {enum.RoleAdmin},
	PageUsers:     {enum.RoleAdmin},
}

// navigation lists the pages in menu order with where each one lives.
var navigation = []struct {
	page Page
	link Link
}{
	{PageDashboard, Link{Label: "Panel", Href: "/admin"}},
	{PageKitchen, Link{Label: "Cocina", Href: "/staff/kitchen"}},
	{PageDelivery, Link{Label: "Pedidos a domicilio", Href: "/staff/delivery"}},
	{PagePickup, Link{Label: "Pedidos para recoger", Href: "/staff/pickup"}},
	{PageWaiter, Link{Label: "Mesero", Href: "/staff/waiter/orders"}},
	{PageOrders, Link{Label: "Pedidos", Href: "/staff/orders"}},
	{PageMenu, Link{Label: "Menú", Href: "/admin/menu-items"}},
	{PageInventory, Link{Label: "Inventario", Href: "/admin/inventory"}},
	{PageSettings, Link{Label: "Configuración", Href: "/admin/settings"}},
	{PageUsers, Link{Label: "Usuarios", Href: "/admin/users"}},
}

// Navigation returns the links to every page role may open.
func Navigation(role enum.Role) []Link {
	links := []Link{}
	for _, n := range navigation {
		if hasRole(policies[n.page], role) {
			links = append(links, n.link)
		}
	}
	return links
}

// RolesFor returns the roles allowed on page. Unknown pages allow nobody.
func RolesFor(p Page) []enum.Role {
	return policies[p]
}

// ParseRoles converts role names, skipping unknown ones.
func ParseRoles(names []string) []enum.Role {
	var out []enum.Role
	for _, n := range names {
		if r, err := enum.ParseRole(n); err == nil {
			out = append(out, r)
		}
	}
	return out
}
