package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/MarcusAlienx/casanala/internal/chat"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type mockAssistant struct {
	question string
	menu     []chat.MenuItem
	loc      *chat.Location
	req      chat.RecommendationRequest
}

func (m *mockAssistant) Answer(_ context.Context, question string, menu []chat.MenuItem, loc *chat.Location) string {
	m.question, m.menu, m.loc = question, menu, loc
	return "Te recomiendo el pozole."
}

func (m *mockAssistant) Recommend(_ context.Context, req chat.RecommendationRequest, menu []chat.MenuItem) chat.Recommendations {
	m.req, m.menu = req, menu
	return chat.Recommendations{Recommendations: []string{menu[0].Name}}
}

type mockMenuReader struct {
	items []database.MenuItem
	err   error
}

func (m *mockMenuReader) ListMenuItems(context.Context) ([]database.MenuItem, error) {
	return m.items, m.err
}

func chatRouter(a handler.ChatAssistant, menu handler.MenuReader) *chi.Mux {
	h := handler.NewChatHandler(a, menu, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestChat_Answer(t *testing.T) {
	a := &mockAssistant{}
	rr := postJSON(t, chatRouter(a, &mockMenuReader{}), "/api/chat", map[string]interface{}{
		"question":     "¿Qué me recomiendas?",
		"menuItems":    []map[string]interface{}{{"name": "Pozole", "description": "Rojo", "price": "95", "category": "Platos"}},
		"userLocation": map[string]float64{"latitude": 20.67, "longitude": -103.35},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["answer"] != "Te recomiendo el pozole." {
		t.Errorf("answer: got %v", resp["answer"])
	}
	if len(a.menu) != 1 || a.menu[0].Name != "Pozole" || a.loc == nil || a.loc.Latitude != 20.67 {
		t.Errorf("assistant got menu=%v loc=%v", a.menu, a.loc)
	}
}

func TestChat_MissingFields(t *testing.T) {
	r := chatRouter(&mockAssistant{}, &mockMenuReader{})
	bodies := []map[string]interface{}{
		{"menuItems": []interface{}{}},
		{"question": "hola"},
	}
	for _, b := range bodies {
		rr := postJSON(t, r, "/api/chat", b)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
		}
		if resp := decodeResponse(t, rr); resp["error"] != "Missing question or menuItems in request body" {
			t.Errorf("error: got %v", resp["error"])
		}
	}
}

func TestChat_EmptyMenuAllowed(t *testing.T) {
	rr := postJSON(t, chatRouter(&mockAssistant{}, &mockMenuReader{}), "/api/chat", map[string]interface{}{
		"question": "¿Abren hoy?", "menuItems": []interface{}{},
	})
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRecommendations_UsesStoredMenu(t *testing.T) {
	a := &mockAssistant{}
	menu := &mockMenuReader{items: []database.MenuItem{
		{ID: "1", Name: "Enchiladas verdes", Price: decimal.NewFromInt(110), Category: "Platos"},
	}}

	rr := postJSON(t, chatRouter(a, menu), "/api/recommendations", map[string]string{"preferences": "picante"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	recs, _ := resp["recommendations"].([]interface{})
	if len(recs) != 1 || recs[0] != "Enchiladas verdes" {
		t.Errorf("recommendations: got %v", resp)
	}
	if a.req.Preferences != "picante" {
		t.Errorf("preferences: got %q", a.req.Preferences)
	}
}

func TestRecommendations_MenuError(t *testing.T) {
	rr := postJSON(t, chatRouter(&mockAssistant{}, &mockMenuReader{err: errors.New("down")}), "/api/recommendations", map[string]string{})
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
