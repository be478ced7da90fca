package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MarcusAlienx/casanala/internal/auth"
	"github.com/MarcusAlienx/casanala/internal/config"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/MarcusAlienx/casanala/internal/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testSecret = "router-secret"

// fakeStore answers every query with empty data; only profiles are real.
type fakeStore struct {
	users map[string]database.User
}

func (f *fakeStore) CreateOrder(context.Context, database.CreateOrderParams) (database.Order, error) {
	return database.Order{}, nil
}
func (f *fakeStore) GetOrder(context.Context, string) (database.Order, error) {
	return database.Order{}, database.ErrNotFound
}
func (f *fakeStore) ListOrders(context.Context, database.ListOrdersParams) ([]database.Order, error) {
	return nil, nil
}
func (f *fakeStore) UpdateOrderStatus(context.Context, database.UpdateOrderStatusParams) (database.Order, error) {
	return database.Order{}, database.ErrNotFound
}
func (f *fakeStore) ListMenuItems(context.Context) ([]database.MenuItem, error) { return nil, nil }
func (f *fakeStore) GetMenuItem(context.Context, string) (database.MenuItem, error) {
	return database.MenuItem{}, database.ErrNotFound
}
func (f *fakeStore) CreateMenuItem(context.Context, database.CreateMenuItemParams) (database.MenuItem, error) {
	return database.MenuItem{}, nil
}
func (f *fakeStore) UpdateMenuItem(context.Context, database.UpdateMenuItemParams) (database.MenuItem, error) {
	return database.MenuItem{}, nil
}
func (f *fakeStore) DeleteMenuItem(context.Context, string) error { return nil }
func (f *fakeStore) ListInventoryItems(context.Context) ([]database.InventoryItem, error) {
	return nil, nil
}
func (f *fakeStore) CreateInventoryItem(context.Context, database.CreateInventoryItemParams) (database.InventoryItem, error) {
	return database.InventoryItem{}, nil
}
func (f *fakeStore) UpdateInventoryStock(context.Context, database.UpdateInventoryStockParams) (database.InventoryItem, error) {
	return database.InventoryItem{}, nil
}
func (f *fakeStore) DeleteInventoryItem(context.Context, string) error { return nil }
func (f *fakeStore) GetSiteSettings(context.Context) (*database.SiteSettings, error) {
	return nil, nil
}
func (f *fakeStore) UpsertSiteSettings(context.Context, database.UpsertSiteSettingsParams) (*database.SiteSettings, error) {
	return &database.SiteSettings{}, nil
}
func (f *fakeStore) ListUsers(context.Context) ([]database.User, error) { return nil, nil }
func (f *fakeStore) CreateUser(context.Context, database.CreateUserParams) (database.User, error) {
	return database.User{}, nil
}
func (f *fakeStore) UpdateUserRole(context.Context, database.UpdateUserRoleParams) (database.User, error) {
	return database.User{}, nil
}
func (f *fakeStore) GetUserByEmail(context.Context, string) (database.User, error) {
	return database.User{}, database.ErrNotFound
}
func (f *fakeStore) GetUserByID(_ context.Context, id string) (database.User, error) {
	u, ok := f.users[id]
	if !ok {
		return database.User{}, database.ErrNotFound
	}
	return u, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := &fakeStore{users: map[string]database.User{
		"admin":   {ID: "admin", Role: enum.RoleAdmin, IsActive: true},
		"cocina":  {ID: "cocina", Role: enum.RoleKitchen, IsActive: true},
		"mesero":  {ID: "mesero", Role: enum.RoleWaiter, IsActive: true},
		"retired": {ID: "retired", Role: enum.RoleAdmin, IsActive: false},
	}}
	cfg := &config.Config{
		Env:              "development",
		JWTSecret:        testSecret,
		DeliveryFee:      decimal.NewFromInt(40),
		DeliveryRadiusKm: 10,
		AllowedOrigins:   []string{"http://localhost:3000"},
	}
	return router.New(cfg, store, router.Deps{}, zap.NewNop())
}

func request(t *testing.T, h http.Handler, method, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		token, err := auth.GenerateToken(testSecret, userID, userID+"@casanala.mx")
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/health", "/menu", "/settings", "/delivery-zone", "/auth/guard?roles=admin"} {
		if rr := request(t, h, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestStaffRoutePolicies(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		path   string
		user   string
		status int
	}{
		{"/staff/kitchen", "", http.StatusUnauthorized},
		{"/staff/kitchen", "cocina", http.StatusOK},
		{"/staff/kitchen", "admin", http.StatusOK},
		{"/staff/kitchen", "mesero", http.StatusForbidden},
		{"/staff/delivery", "mesero", http.StatusOK},
		{"/staff/delivery", "cocina", http.StatusForbidden},
		{"/staff/pickup", "mesero", http.StatusOK},
		{"/staff/orders", "cocina", http.StatusOK},
		{"/staff/orders", "mesero", http.StatusOK},
		// Unknown profiles resolve to cliente.
		{"/staff/orders", "stranger", http.StatusForbidden},
		{"/staff/kitchen", "retired", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.path+"/"+tc.user, func(t *testing.T) {
			if rr := request(t, h, http.MethodGet, tc.path, tc.user); rr.Code != tc.status {
				t.Errorf("got %d, want %d; body: %s", rr.Code, tc.status, rr.Body.String())
			}
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	h := newTestRouter(t)

	rr := request(t, h, http.MethodGet, "/admin/menu-items", "")
	if rr.Code != http.StatusFound {
		t.Fatalf("anonymous: got %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); loc != "/login?redirectedFrom=%2Fadmin%2Fmenu-items" {
		t.Errorf("Location: got %q", loc)
	}

	if rr := request(t, h, http.MethodGet, "/admin/inventory", "cocina"); rr.Code != http.StatusForbidden {
		t.Errorf("cocina: got %d, want %d", rr.Code, http.StatusForbidden)
	}
	for _, path := range []string{"/admin/menu-items", "/admin/inventory", "/admin/settings", "/admin/users"} {
		if rr := request(t, h, http.MethodGet, path, "admin"); rr.Code != http.StatusOK {
			t.Errorf("%s as admin: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestAdminDashboard(t *testing.T) {
	h := newTestRouter(t)

	if rr := request(t, h, http.MethodGet, "/admin", ""); rr.Code != http.StatusFound {
		t.Errorf("anonymous: got %d, want %d", rr.Code, http.StatusFound)
	}

	tests := []struct {
		user    string
		allowed []string
		hidden  []string
	}{
		{"admin", []string{"/admin/users", "/staff/kitchen", "/staff/delivery"}, nil},
		{"cocina", []string{"/admin", "/staff/kitchen", "/staff/orders"}, []string{"/staff/delivery", "/admin/menu-items"}},
		{"mesero", []string{"/staff/delivery", "/staff/pickup", "/staff/waiter/orders"}, []string{"/staff/kitchen", "/admin/settings"}},
	}
	for _, tc := range tests {
		t.Run(tc.user, func(t *testing.T) {
			rr := request(t, h, http.MethodGet, "/admin", tc.user)
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
			}
			var resp struct {
				Links []struct {
					Href string `json:"href"`
				} `json:"links"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			hrefs := make(map[string]bool)
			for _, l := range resp.Links {
				hrefs[l.Href] = true
			}
			for _, want := range tc.allowed {
				if !hrefs[want] {
					t.Errorf("missing link %s in %v", want, resp.Links)
				}
			}
			for _, hidden := range tc.hidden {
				if hrefs[hidden] {
					t.Errorf("unexpected link %s", hidden)
				}
			}
		})
	}
}

func TestMe(t *testing.T) {
	h := newTestRouter(t)
	if rr := request(t, h, http.MethodGet, "/auth/me", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if rr := request(t, h, http.MethodGet, "/auth/me", "mesero"); rr.Code != http.StatusOK {
		t.Errorf("mesero: got %d, want %d", rr.Code, http.StatusOK)
	}
}
