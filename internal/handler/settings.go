package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingsStore defines the store methods needed by settings handlers.
// Satisfied by *database.Queries and *docstore.Store; narrow interface for testability.
type SettingsStore interface {
	GetSiteSettings(ctx context.Context) (*database.SiteSettings, error)
	UpsertSiteSettings(ctx context.Context, arg database.UpsertSiteSettingsParams) (*database.SiteSettings, error)
}

// Weekdays in display order.
var Weekdays = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// DefaultWeeklyHours is served until an admin saves the schedule.
func DefaultWeeklyHours() map[string]database.DayHours {
	hours := make(map[string]database.DayHours, len(Weekdays))
	for _, d := range Weekdays {
		hours[d] = database.DayHours{IsOpen: false, Open: "09:00", Close: "17:00"}
	}
	hours["sabado"] = database.DayHours{IsOpen: true, Open: "10:00", Close: "22:00"}
	hours["domingo"] = database.DayHours{IsOpen: true, Open: "10:00", Close: "20:00"}
	return hours
}

// SettingsHandler handles site settings endpoints.
type SettingsHandler struct {
	store SettingsStore
	log   *zap.Logger
}

func NewSettingsHandler(store SettingsStore, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, log: log}
}

// RegisterPublicRoutes exposes the read-only settings.
func (h *SettingsHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
}

// RegisterRoutes registers settings endpoints. Expected at /admin/settings.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// --- Request / Response types ---

type settingsRequest struct {
	WeeklyHours map[string]database.DayHours `json:"weeklyHours"`
	Promotions  []database.Promotion         `json:"promotions"`
}

func (req *settingsRequest) validate() map[string]string {
	errs := map[string]string{}

	for day, dh := range req.WeeklyHours {
		if !isWeekday(day) {
			errs["weeklyHours."+day] = "Día inválido."
			continue
		}
		field := "weeklyHours." + day
		if dh.Open != "" && !hhmm.MatchString(dh.Open) {
			errs[field+".open"] = "Formato de hora inválido (HH:MM)"
		}
		if dh.Close != "" && !hhmm.MatchString(dh.Close) {
			errs[field+".close"] = "Formato de hora inválido (HH:MM)"
		}
		if dh.IsOpen && (dh.Open == "" || dh.Close == "") {
			errs[field] = "Se requiere hora de apertura y cierre si el día está abierto"
		}
	}

	for i := range req.Promotions {
		p := &req.Promotions[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Description = strings.TrimSpace(p.Description)
		field := fmt.Sprintf("promotions[%d]", i)
		if p.ID == "" {
			errs[field+".id"] = "El ID es requerido."
		}
		if utf8.RuneCountInString(p.Description) < 5 {
			errs[field+".description"] = "Descripción muy corta."
		}
		if p.StartDate != "" && !validDate(p.StartDate) {
			errs[field+".startDate"] = "Fecha inválida (AAAA-MM-DD)."
		}
		if p.EndDate != "" && !validDate(p.EndDate) {
			errs[field+".endDate"] = "Fecha inválida (AAAA-MM-DD)."
		}
	}
	return errs
}

func isWeekday(d string) bool {
	for _, w := range Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

type settingsResponse struct {
	WeeklyHours map[string]database.DayHours `json:"weeklyHours"`
	Promotions  []database.Promotion         `json:"promotions"`
	UpdatedAt   *time.Time                   `json:"updatedAt,omitempty"`
	Message     string                       `json:"message,omitempty"`
}

// toSettingsResponse fills any day missing from s with its default.
func toSettingsResponse(s *database.SiteSettings) settingsResponse {
	resp := settingsResponse{WeeklyHours: DefaultWeeklyHours(), Promotions: []database.Promotion{}}
	if s == nil {
		return resp
	}
	for day, dh := range s.WeeklyHours {
		resp.WeeklyHours[day] = dh
	}
	if s.Promotions != nil {
		resp.Promotions = s.Promotions
	}
	updated := s.UpdatedAt
	resp.UpdatedAt = &updated
	return resp
}

// --- Handlers ---

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetSiteSettings(r.Context())
	if err != nil {
		internalError(w, h.log, "get site settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// Update merges the given sections into the stored settings. A section
// left out of the body keeps its stored value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.WeeklyHours == nil && req.Promotions == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weeklyHours or promotions is required"})
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	s, err := h.store.UpsertSiteSettings(r.Context(), database.UpsertSiteSettingsParams{
		WeeklyHours: req.WeeklyHours,
		Promotions:  req.Promotions,
	})
	if err != nil {
		internalError(w, h.log, "update site settings", err)
		return
	}

	resp := toSettingsResponse(s)
	resp.Message = "Configuración actualizada exitosamente."
	writeJSON(w, http.StatusOK, resp)
}
