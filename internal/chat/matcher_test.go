package chat

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"mixed case", "Tacos al PASTOR", "tacos al pastor"},
		{"multiple spaces", "Agua  de   Jamaica", "agua de jamaica"},
		{"markdown", "**Enchiladas Verdes**", "enchiladas verdes"},
		{"accents kept", "Piña Colada", "piña colada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := normalize(tt.input); result != tt.expected {
				t.Errorf("normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	got := keywords("2x tacos al pastor con x3 piña 4")
	want := []string{"tacos", "pastor", "piña"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func matcherMenu() []MenuItem {
	return []MenuItem{
		{Name: "Tacos al Pastor"},
		{Name: "Tacos de Suadero"},
		{Name: "Agua de Jamaica"},
		{Name: "Agua de Horchata"},
		{Name: "Enchiladas Verdes"},
	}
}

func TestMatch(t *testing.T) {
	m := NewMatcher(matcherMenu())

	tests := []struct {
		name   string
		input  string
		status MatchStatus
		item   string
	}{
		{"exact", "tacos al pastor", Matched, "Tacos al Pastor"},
		{"quantity prefix", "2x Tacos al Pastor", Matched, "Tacos al Pastor"},
		{"name inside sentence", "Te recomiendo unas enchiladas verdes bien picositas", Matched, "Enchiladas Verdes"},
		{"partial name", "unos tacos", Unmatched, ""},
		{"unknown dish", "Pozole rojo", Unmatched, ""},
		{"empty", "", Unmatched, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.input)
			if res.Status != tt.status {
				t.Fatalf("Match(%q) status = %s, want %s", tt.input, res.Status, tt.status)
			}
			if tt.item != "" && res.Item.Name != tt.item {
				t.Errorf("Match(%q) item = %q, want %q", tt.input, res.Item.Name, tt.item)
			}
		})
	}
}

func TestMatchAmbiguous(t *testing.T) {
	m := NewMatcher(matcherMenu())

	res := m.Match("agua de jamaica o agua de horchata")
	if res.Status != Ambiguous {
		t.Fatalf("status = %s, want Ambiguous", res.Status)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("candidates = %v, want 2", res.Candidates)
	}
}

func TestMatchDistinctWordsWin(t *testing.T) {
	m := NewMatcher([]MenuItem{{Name: "Tacos"}, {Name: "Tacos al Pastor"}})

	res := m.Match("tacos al pastor con piña")
	if res.Status != Matched || res.Item.Name != "Tacos al Pastor" {
		t.Errorf("got %s %+v", res.Status, res.Item)
	}
}
