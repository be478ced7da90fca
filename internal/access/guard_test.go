package access

import (
	"testing"

	"github.com/MarcusAlienx/casanala/internal/enum"
)

func TestDecide(t *testing.T) {
	kitchen := RolesFor(PageKitchen)

	tests := []struct {
		name      string
		resolving bool
		session   *Session
		want      Outcome
		links     int
	}{
		{"resolving without session", true, nil, OutcomeLoading, 0},
		{"resolving with allowed session", true, &Session{Role: enum.RoleKitchen}, OutcomeLoading, 0},
		{"allowed role", false, &Session{Role: enum.RoleKitchen}, OutcomeGranted, 0},
		{"admin allowed", false, &Session{Role: enum.RoleAdmin}, OutcomeGranted, 0},
		{"wrong role", false, &Session{Role: enum.RoleWaiter}, OutcomeDenied, 1},
		{"default role", false, &Session{Role: enum.RoleCustomer}, OutcomeDenied, 1},
		{"no session", false, nil, OutcomeDenied, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.resolving, tc.session, kitchen)
			if d.Outcome != tc.want {
				t.Errorf("outcome = %s, want %s", d.Outcome, tc.want)
			}
			if len(d.Links) != tc.links {
				t.Errorf("links = %v", d.Links)
			}
		})
	}
}

func TestDecideDeniedLinks(t *testing.T) {
	d := Decide(false, nil, RolesFor(PageMenu))
	if d.Message != "Acceso Denegado" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Links[0].Href != "/" || d.Links[1].Href != "/login" {
		t.Errorf("links = %v", d.Links)
	}
}

func TestPolicies(t *testing.T) {
	tests := []struct {
		page Page
		role enum.Role
		want bool
	}{
		{PageKitchen, enum.RoleKitchen, true},
		{PageKitchen, enum.RoleWaiter, false},
		{PageDelivery, enum.RoleWaiter, true},
		{PageDelivery, enum.RoleKitchen, false},
		{PagePickup, enum.RoleWaiter, true},
		{PageWaiter, enum.RoleWaiter, true},
		{PageMenu, enum.RoleWaiter, false},
		{PageSettings, enum.RoleAdmin, true},
		{PageDashboard, enum.RoleKitchen, true},
		{PageDashboard, enum.RoleCustomer, false},
		{Page("unknown"), enum.RoleAdmin, false},
	}
	for _, tc := range tests {
		got := Decide(false, &Session{Role: tc.role}, RolesFor(tc.page)).Outcome == OutcomeGranted
		if got != tc.want {
			t.Errorf("%s as %s: granted=%v, want %v", tc.page, tc.role, got, tc.want)
		}
	}
}

func TestParseRoles(t *testing.T) {
	got := ParseRoles([]string{"admin", "owner", "cocina"})
	if len(got) != 2 || got[0] != enum.RoleAdmin || got[1] != enum.RoleKitchen {
		t.Errorf("got %v", got)
	}
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		role  enum.Role
		count int
		first string
	}{
		{enum.RoleAdmin, 10, "/admin"},
		{enum.RoleKitchen, 3, "/admin"},
		{enum.RoleWaiter, 5, "/admin"},
		{enum.RoleCustomer, 0, ""},
	}
	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			links := Navigation(tc.role)
			if len(links) != tc.count {
				t.Fatalf("got %d links %v, want %d", len(links), links, tc.count)
			}
			if tc.count > 0 && links[0].Href != tc.first {
				t.Errorf("first link = %s, want %s", links[0].Href, tc.first)
			}
		})
	}
}
