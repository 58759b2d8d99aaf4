package semantic

import "testing"

func TestExtractID(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantID int64
		wantOK bool
	}{
		{"id with space", "increase price for event id 5", 5, true},
		{"hash prefix", "show me event #12", 12, true},
		{"id with colon", "update ID: 7", 7, true},
		{"number keyword", "the event number 33", 33, true},
		{"with id phrase", "the row with id 9", 9, true},
		{"id equals", "id=41", 41, true},
		{"id equals spaced", "id = 41", 41, true},
		{"uppercase", "ID 8 please", 8, true},
		{"no identifier", "increase the price for the Bulls game", 0, false},
		{"bare number is not an id", "set the price to 50", 0, false},
		{"empty query", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractID(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("ExtractID(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("ExtractID(%q) = %d, want %d", tt.query, id, tt.wantID)
			}
		})
	}
}
