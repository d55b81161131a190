package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bocadillos Fríos", "bocadillos-frios"},
		{"Hamburguesas", "hamburguesas"},
		{"  Raciones  ", "raciones"},
		{"Chuletón a la brasa", "chuleton-a-la-brasa"},
		{"Postres -- caseros", "postres-caseros"},
		{"Año Nuevo", "ano-nuevo"},
		{"", ""},
		{"¡¡¡", ""},
	}

	for _, tt := range tests {
		if got := Generate(tt.in); got != tt.want {
			t.Errorf("Generate(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategorySentinel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postres", "postres"},
		{"Bocadillos", "bocadillos"},
		{"", "sin-categoria"},
		{"   ", "sin-categoria"},
		{"???", "sin-categoria"},
	}

	for _, tt := range tests {
		if got := Category(tt.in); got != tt.want {
			t.Errorf("Category(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
