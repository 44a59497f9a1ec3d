package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "OLD FORGE", "old forge"},
		{"strips punctuation", "Kentucky Straight. Bourbon, Whiskey!", "kentucky straight bourbon whiskey"},
		{"keeps apostrophes", "Maker's Mark", "maker's mark"},
		{"collapses whitespace", "  old \t forge\n bourbon  ", "old forge bourbon"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSimilarity_Identity(t *testing.T) {
	for _, s := range []string{"Old Forge Bourbon", "a", "GOVERNMENT WARNING", "x y z"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilarity_Empty(t *testing.T) {
	if got := Similarity("Old Forge", ""); got != 0 {
		t.Errorf("Similarity(s, \"\") = %v, want 0", got)
	}
	if got := Similarity("", "Old Forge"); got != 0 {
		t.Errorf("Similarity(\"\", s) = %v, want 0", got)
	}
}

func TestSimilarity_CaseAndPunctuationInsensitive(t *testing.T) {
	if got := Similarity("Old Forge Bourbon", "OLD FORGE BOURBON"); got != 1.0 {
		t.Errorf("expected 1.0 for case-only difference, got %v", got)
	}
}

func TestSimilarity_ContainmentBonus(t *testing.T) {
	// "old forge" is a substring of "old forge bourbon": Jaccard 2/3 plus the
	// 0.2 containment bonus.
	got := Similarity("Old Forge", "Old Forge Bourbon")
	want := 2.0/3.0 + 0.2
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
}

func TestSimilarity_Clamped(t *testing.T) {
	// Token sets are equal but normalized strings differ in order, so the
	// containment bonus cannot push the score past 1.0... unless one actually
	// contains the other. Use a repeated-token case to force clamping.
	got := Similarity("forge forge", "forge")
	if got > 1.0 {
		t.Errorf("similarity must be clamped to 1.0, got %v", got)
	}
}

func TestSimilarity_UnrelatedStrings(t *testing.T) {
	got := Similarity("Old Forge Bourbon", "Willow Creek Vineyards")
	if got != 0 {
		t.Errorf("expected 0 for disjoint token sets, got %v", got)
	}
}

func TestSimilarity_LegalSuffixTolerance(t *testing.T) {
	got := Similarity("Old Forge Distilling", "Old Forge Distilling Co., LLC")
	if got < 0.6 {
		t.Errorf("added legal suffix should stay similar, got %v", got)
	}
}
