package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/handler"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// mockSettingsStore mirrors the merge semantics of the real stores.
type mockSettingsStore struct {
	settings *database.SiteSettings
	err      error
	upserts  int
}

func (m *mockSettingsStore) GetSiteSettings(_ context.Context) (*database.SiteSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsStore) UpsertSiteSettings(_ context.Context, arg database.UpsertSiteSettingsParams) (*database.SiteSettings, error) {
	m.upserts++
	if m.settings == nil {
		m.settings = &database.SiteSettings{WeeklyHours: map[string]database.DayHours{}, Promotions: []database.Promotion{}}
	}
	if arg.WeeklyHours != nil {
		m.settings.WeeklyHours = arg.WeeklyHours
	}
	if arg.Promotions != nil {
		m.settings.Promotions = arg.Promotions
	}
	m.settings.UpdatedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return m.settings, nil
}

func settingsRouter(store handler.SettingsStore) *chi.Mux {
	h := handler.NewSettingsHandler(store, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterPublicRoutes(r)
	r.Route("/admin/settings", h.RegisterRoutes)
	return r
}

func weeklyHours(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	hours, ok := resp["weeklyHours"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected weeklyHours, got %v", resp)
	}
	return hours
}

func TestDefaultWeeklyHours(t *testing.T) {
	hours := handler.DefaultWeeklyHours()
	if len(hours) != 7 {
		t.Fatalf("got %d days, want 7", len(hours))
	}
	if hours["lunes"].IsOpen || hours["lunes"].Open != "09:00" || hours["lunes"].Close != "17:00" {
		t.Errorf("lunes: %+v", hours["lunes"])
	}
	if !hours["sabado"].IsOpen || hours["sabado"].Close != "22:00" {
		t.Errorf("sabado: %+v", hours["sabado"])
	}
	if !hours["domingo"].IsOpen || hours["domingo"].Close != "20:00" {
		t.Errorf("domingo: %+v", hours["domingo"])
	}
}

func TestSettings_DefaultsWhenMissing(t *testing.T) {
	rr := get(settingsRouter(&mockSettingsStore{}), "/settings")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	hours := weeklyHours(t, resp)
	sabado, _ := hours["sabado"].(map[string]interface{})
	if sabado["isOpen"] != true || sabado["open"] != "10:00" {
		t.Errorf("sabado: %v", sabado)
	}
	if promos, _ := resp["promotions"].([]interface{}); promos == nil || len(promos) != 0 {
		t.Errorf("promotions: got %v, want empty list", resp["promotions"])
	}
	if _, ok := resp["updatedAt"]; ok {
		t.Error("defaults should carry no updatedAt")
	}
}

func TestSettings_StoredDaysOverrideDefaults(t *testing.T) {
	store := &mockSettingsStore{settings: &database.SiteSettings{
		WeeklyHours: map[string]database.DayHours{"lunes": {IsOpen: true, Open: "08:00", Close: "16:00"}},
	}}
	hours := weeklyHours(t, decodeResponse(t, get(settingsRouter(store), "/settings")))

	lunes, _ := hours["lunes"].(map[string]interface{})
	if lunes["isOpen"] != true || lunes["open"] != "08:00" {
		t.Errorf("lunes: %v", lunes)
	}
	if len(hours) != 7 {
		t.Errorf("got %d days, want 7", len(hours))
	}
}

func TestSettings_Update(t *testing.T) {
	store := &mockSettingsStore{}
	r := settingsRouter(store)

	rr := sendJSON(t, r, http.MethodPut, "/admin/settings", map[string]interface{}{
		"weeklyHours": map[string]interface{}{
			"viernes": map[string]interface{}{"isOpen": true, "open": "12:00", "close": "23:30"},
		},
		"promotions": []map[string]interface{}{
			{"id": "2x1", "description": "Martes de tacos 2x1", "startDate": "2026-06-01", "isActive": true},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["message"] != "Configuración actualizada exitosamente." {
		t.Errorf("message: got %v", resp["message"])
	}
	if len(store.settings.Promotions) != 1 || store.settings.WeeklyHours["viernes"].Close != "23:30" {
		t.Errorf("stored: %+v", store.settings)
	}
}

func TestSettings_UpdateValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]interface{}
		field string
		msg   string
	}{
		{
			"bad time format",
			map[string]interface{}{"weeklyHours": map[string]interface{}{
				"lunes": map[string]interface{}{"isOpen": true, "open": "9:00", "close": "17:00"},
			}},
			"weeklyHours.lunes.open", "Formato de hora inválido (HH:MM)",
		},
		{
			"open day needs hours",
			map[string]interface{}{"weeklyHours": map[string]interface{}{
				"martes": map[string]interface{}{"isOpen": true, "open": "10:00"},
			}},
			"weeklyHours.martes", "Se requiere hora de apertura y cierre si el día está abierto",
		},
		{
			"unknown day",
			map[string]interface{}{"weeklyHours": map[string]interface{}{
				"monday": map[string]interface{}{"isOpen": false},
			}},
			"weeklyHours.monday", "Día inválido.",
		},
		{
			"short promotion",
			map[string]interface{}{"promotions": []map[string]interface{}{{"id": "p1", "description": "2x1"}}},
			"promotions[0].description", "Descripción muy corta.",
		},
		{
			"bad promotion date",
			map[string]interface{}{"promotions": []map[string]interface{}{{"id": "p1", "description": "Postre gratis", "endDate": "01/06/2026"}}},
			"promotions[0].endDate", "Fecha inválida (AAAA-MM-DD).",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockSettingsStore{}
			rr := sendJSON(t, settingsRouter(store), http.MethodPut, "/admin/settings", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
			fields := fieldsOf(t, decodeResponse(t, rr))
			if fields[tc.field] != tc.msg {
				t.Errorf("%s: got %v, want %s", tc.field, fields[tc.field], tc.msg)
			}
			if store.upserts != 0 {
				t.Error("invalid settings were saved")
			}
		})
	}
}

func TestSettings_UpdateEmptyBody(t *testing.T) {
	rr := sendJSON(t, settingsRouter(&mockSettingsStore{}), http.MethodPut, "/admin/settings", map[string]interface{}{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSettings_StoreError(t *testing.T) {
	store := &mockSettingsStore{err: errors.New("unavailable")}
	if rr := get(settingsRouter(store), "/admin/settings"); rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
