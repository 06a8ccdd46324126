package grocery

import "testing"

func TestResolve(t *testing.T) {
	memory := map[string]string{"milk": "Dairy"}

	tests := []struct {
		name     string
		explicit string
		memory   map[string]string
		want     string
	}{
		{"milk", "", memory, "Dairy"},
		{"milk", "Custom", memory, "Custom"},
		{"Milk", "", memory, "Dairy"}, // lookup is case-insensitive
		{"unknownitem", "", map[string]string{}, DefaultCategory},
		{"unknownitem", "", nil, DefaultCategory},
	}
	for _, tt := range tests {
		if got := Resolve(tt.name, tt.explicit, tt.memory); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.name, tt.explicit, got, tt.want)
		}
	}
}
