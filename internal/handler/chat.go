package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MarcusAlienx/casanala/internal/chat"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ChatAssistant answers menu questions. Satisfied by *chat.Assistant.
type ChatAssistant interface {
	Answer(ctx context.Context, question string, menu []chat.MenuItem, loc *chat.Location) string
	Recommend(ctx context.Context, req chat.RecommendationRequest, menu []chat.MenuItem) chat.Recommendations
}

// MenuReader loads the menu for recommendations.
type MenuReader interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
}

// ChatHandler serves the chatbot endpoints.
type ChatHandler struct {
	assistant ChatAssistant
	menu      MenuReader
	log       *zap.Logger
}

func NewChatHandler(assistant ChatAssistant, menu MenuReader, log *zap.Logger) *ChatHandler {
	return &ChatHandler{assistant: assistant, menu: menu, log: log}
}

func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
	r.Post("/api/recommendations", h.Recommendations)
}

type chatRequest struct {
	Question     string          `json:"question"`
	MenuItems    []chat.MenuItem `json:"menuItems"`
	UserLocation *chat.Location  `json:"userLocation"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Chat answers a free-form question about the menu the client sends along.
// Provider failures still produce a 200 with the apology text.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" || req.MenuItems == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing question or menuItems in request body"})
		return
	}

	answer := h.assistant.Answer(r.Context(), req.Question, req.MenuItems, req.UserLocation)
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

// Recommendations suggests dishes from the stored menu.
func (h *ChatHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req chat.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items, err := h.menu.ListMenuItems(r.Context())
	if err != nil {
		internalError(w, h.log, "list menu for recommendations", err)
		return
	}

	writeJSON(w, http.StatusOK, h.assistant.Recommend(r.Context(), req, chat.FromMenu(items)))
}
