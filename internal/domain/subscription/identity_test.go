package subscription

import "testing"

func TestCanonicalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  ProductIdentity
	}{
		{"simple", "Pro Screener", "pro_screener"},
		{"already slug", "pro_screener", "pro_screener"},
		{"mixed separators", "Pro - Screener (Annual)", "pro_screener_annual"},
		{"run of separators collapses", "Pro   ///   Screener", "pro_screener"},
		{"leading and trailing trimmed", "  **Pro Screener**  ", "pro_screener"},
		{"digits kept", "Level 2 Data", "level_2_data"},
		{"unicode treated as separator", "Élite Chárt", "lite_ch_rt"},
		{"empty", "", ""},
		{"only separators", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalizeLabel(tt.label); got != tt.want {
				t.Errorf("CanonicalizeLabel(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeLabelDeterministic(t *testing.T) {
	label := "Pro Screener - Annual"
	first := CanonicalizeLabel(label)
	for i := 0; i < 10; i++ {
		if got := CanonicalizeLabel(label); got != first {
			t.Fatalf("CanonicalizeLabel not deterministic: %q vs %q", got, first)
		}
	}
}

func TestCanonicalizeLabelGroupsEquivalentSpellings(t *testing.T) {
	// Spellings the catalog and the billing origin use for the same
	// product must land on one identity.
	spellings := []string{
		"Pro Screener",
		"pro-screener",
		"PRO_SCREENER",
		"Pro  Screener ",
	}
	want := CanonicalizeLabel(spellings[0])
	for _, s := range spellings[1:] {
		if got := CanonicalizeLabel(s); got != want {
			t.Errorf("CanonicalizeLabel(%q) = %q, want %q", s, got, want)
		}
	}
}

func TestDisplayLabelPrecedence(t *testing.T) {
	tests := []struct {
		name string
		p    PurchaseRecord
		want string
	}{
		{
			name: "name wins over key and id",
			p:    PurchaseRecord{ProductName: "Pro Screener", ProductKey: "pro-screener", ProductID: "prod_123"},
			want: "Pro Screener",
		},
		{
			name: "key wins when name blank",
			p:    PurchaseRecord{ProductName: "  ", ProductKey: "pro-screener", ProductID: "prod_123"},
			want: "pro-screener",
		},
		{
			name: "id as last resort",
			p:    PurchaseRecord{ProductID: "prod_123"},
			want: "prod_123",
		},
		{
			name: "all blank",
			p:    PurchaseRecord{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayLabel(tt.p); got != tt.want {
				t.Errorf("DisplayLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalizeNoDescriptors(t *testing.T) {
	// A purchase with no descriptors still canonicalizes, to the empty
	// identity, so grouping stays total.
	if got := Canonicalize(PurchaseRecord{}); got != "" {
		t.Errorf("Canonicalize(empty) = %q, want empty identity", got)
	}
}
