package pokedex

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Plain names
		{"single word", "Squirtle", "squirtle"},
		{"already lowercase", "pikachu", "pikachu"},
		{"two words", "Ho Oh", "ho-oh"},

		// Punctuation
		{"period", "Mr. Mime", "mr-mime"},
		{"apostrophe", "Farfetch'd", "farfetch-d"},
		{"colon and space", "Type: Null", "type-null"},
		{"existing hyphen", "Porygon-Z", "porygon-z"},

		// Non-ASCII is treated like punctuation
		{"gender symbol", "Nidoran♀", "nidoran"},

		// Whitespace handling
		{"leading and trailing spaces", "  Mew  ", "mew"},
		{"multiple separators collapse", "Tapu   Koko", "tapu-koko"},

		// Digits survive
		{"digits", "Porygon2", "porygon2"},

		// Degenerate input
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if got := Slugify("Ho Oh"); got != "ho-oh" {
			t.Fatalf("Slugify not deterministic: got %q on run %d", got, i)
		}
	}
}
