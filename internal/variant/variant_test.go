package variant

import "testing"

func TestKey_Deterministic(t *testing.T) {
	a := Key("p1", "M", "red")
	b := Key("p1", "M", "red")
	if a != b {
		t.Errorf("Key not deterministic: %q != %q", a, b)
	}
}

func TestKey_DistinctTriples(t *testing.T) {
	tests := []struct {
		name string
		a    [3]string
		b    [3]string
	}{
		{"different size", [3]string{"p1", "M", "red"}, [3]string{"p1", "L", "red"}},
		{"different color", [3]string{"p1", "M", "red"}, [3]string{"p1", "M", "blue"}},
		{"different product", [3]string{"p1", "M", "red"}, [3]string{"p2", "M", "red"}},
		{"shifted boundaries", [3]string{"a", "bc", "d"}, [3]string{"ab", "c", "d"}},
		{"empty vs shifted", [3]string{"p1", "", "Mred"}, [3]string{"p1", "M", "red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := Key(tt.a[0], tt.a[1], tt.a[2])
			kb := Key(tt.b[0], tt.b[1], tt.b[2])
			if ka == kb {
				t.Errorf("Key(%v) == Key(%v) = %q, want distinct", tt.a, tt.b, ka)
			}
		})
	}
}

func TestKey_NoNormalization(t *testing.T) {
	// Case and whitespace are significant; the catalog owns consistency.
	if Key("p1", "M", "Red") == Key("p1", "M", "red") {
		t.Error("Key normalized case, want exact match semantics")
	}
	if Key("p1", "M ", "red") == Key("p1", "M", "red") {
		t.Error("Key trimmed whitespace, want exact match semantics")
	}
}
