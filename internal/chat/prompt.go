// Package chat builds menu-aware prompts and calls the hosted LLM behind them.
package chat

import (
	"fmt"
	"strings"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/shopspring/decimal"
)

// MenuItem is the slice of a menu entry the prompts need.
type MenuItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// Location is the optional user position sent by the browser.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FromMenu converts stored menu items.
func FromMenu(items []database.MenuItem) []MenuItem {
	out := make([]MenuItem, len(items))
	for i, m := range items {
		out[i] = MenuItem{Name: m.Name, Description: m.Description, Price: m.Price, Category: m.Category}
	}
	return out
}

// FormatMenu renders one "name (category): description ($price)" line per item.
func FormatMenu(items []MenuItem) string {
	lines := make([]string, len(items))
	for i, m := range items {
		lines[i] = fmt.Sprintf("%s (%s): %s ($%s)", m.Name, m.Category, m.Description, m.Price.StringFixed(2))
	}
	return strings.Join(lines, "\n")
}

func locationInfo(loc *Location) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("User location is: Latitude %v, Longitude %v", loc.Latitude, loc.Longitude)
}

// BuildAnswerPrompt is the customer Q&A prompt. loc may be nil.
func BuildAnswerPrompt(question string, menu []MenuItem, loc *Location) string {
	var b strings.Builder
	b.WriteString("Eres un amigable asistente de chatbot para Casa Nala, un restaurante de comida mexicana. ")
	b.WriteString("Usa la información del menú proporcionada para responder la pregunta del cliente. ")
	b.WriteString("Si el usuario proporciona información de ubicación, considera si es relevante para la respuesta ")
	b.WriteString("(por ejemplo, para preguntas sobre entrega o distancia). Sé conciso y útil.\n\n")
	b.WriteString("Menú:\n")
	b.WriteString(FormatMenu(menu))
	b.WriteString("\n\nPregunta: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\n")
	if info := locationInfo(loc); info != "" {
		b.WriteString("Información de Ubicación: ")
		b.WriteString(info)
		b.WriteString("\n\n")
	}
	b.WriteString("Respuesta:")
	return b.String()
}

// RecommendationRequest carries the optional personalisation hints.
type RecommendationRequest struct {
	DietaryRestrictions string    `json:"dietaryRestrictions,omitempty"`
	Preferences         string    `json:"preferences,omitempty"`
	PastOrders          string    `json:"pastOrders,omitempty"`
	UserLocation        *Location `json:"userLocation,omitempty"`
}

// mentionsLocation reports whether any hint asks about location; only then is
// the position included in the prompt.
func (r RecommendationRequest) mentionsLocation() bool {
	text := strings.ToLower(r.DietaryRestrictions + " " + r.Preferences + " " + r.PastOrders)
	return strings.Contains(text, "location") || strings.Contains(text, "ubicación") || strings.Contains(text, "cerca")
}

// BuildRecommendationPrompt asks for dish names, one per line.
func BuildRecommendationPrompt(req RecommendationRequest, menu []MenuItem) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI chatbot that provides personalized food recommendations from the restaurant menu.\n\n")
	b.WriteString("The menu is:\n")
	for _, m := range menu {
		fmt.Fprintf(&b, "- %s: %s ($%s)\n", m.Name, m.Description, m.Price.StringFixed(2))
	}
	b.WriteString("\n")
	if s := strings.TrimSpace(req.DietaryRestrictions); s != "" {
		fmt.Fprintf(&b, "The user has the following dietary restrictions: %s.\n", s)
	}
	if s := strings.TrimSpace(req.Preferences); s != "" {
		fmt.Fprintf(&b, "The user has the following food preferences: %s.\n", s)
	}
	if s := strings.TrimSpace(req.PastOrders); s != "" {
		fmt.Fprintf(&b, "The user has the following past orders: %s.\n", s)
	}
	if req.UserLocation != nil && req.mentionsLocation() {
		fmt.Fprintf(&b, "The user location is: Latitude: %v, Longitude: %v.\n",
			req.UserLocation.Latitude, req.UserLocation.Longitude)
	}
	b.WriteString("\nRecommend some dishes from the menu, considering the user's dietary restrictions, ")
	b.WriteString("preferences, past orders, and location (if available).\n")
	b.WriteString("Make sure to only suggest items that are available in the menu.\n")
	b.WriteString("Output only the list of recommended dishes, each on a new line.\n")
	return b.String()
}

// ParseRecommendations keeps the lines of completion that name a menu item,
// in order and without duplicates, using the menu's spelling.
func ParseRecommendations(completion string, menu []MenuItem) []string {
	matcher := NewMatcher(menu)

	seen := make(map[string]bool)
	out := []string{}
	for _, line := range strings.Split(completion, "\n") {
		res := matcher.Match(cleanLine(line))
		if res.Status != Matched || seen[res.Item.Name] {
			continue
		}
		seen[res.Item.Name] = true
		out = append(out, res.Item.Name)
	}
	return out
}

// cleanLine strips list markers and emphasis from a completion line.
func cleanLine(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "-*•· ")
	if i := strings.IndexAny(s, ".)"); i > 0 && i <= 3 && isDigits(s[:i]) {
		s = s[i+1:]
	}
	s = strings.Trim(strings.TrimSpace(s), "*_\"'")
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
