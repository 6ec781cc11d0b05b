package shareindex

import "testing"

func TestAliasPathUsesBackslashes(t *testing.T) {
	got := AliasPath("music", "rock/album1/track1.flac")
	want := `music\rock\album1\track1.flac`
	if got != want {
		t.Fatalf("AliasPath = %q, want %q", got, want)
	}
}

func TestAliasedToReal(t *testing.T) {
	got := AliasedToReal("/srv/music", "music", `music\rock\track1.flac`)
	want := "/srv/music/rock/track1.flac"
	if got != want {
		t.Fatalf("AliasedToReal = %q, want %q", got, want)
	}
}

func TestExtractTermsLowercasesAndDedups(t *testing.T) {
	got := extractTerms("Track-01 (Remaster) Track-01.flac")
	seen := make(map[string]int)
	for _, term := range got {
		seen[term]++
	}
	if seen["track"] != 1 {
		t.Fatalf("expected 'track' exactly once, got counts %v", seen)
	}
	if _, ok := seen["01"]; !ok {
		t.Fatalf("expected numeric term '01' to be kept, got %v", got)
	}
	if _, ok := seen["remaster"]; !ok {
		t.Fatalf("expected 'remaster' term, got %v", got)
	}
}

func TestExtractTermsDropsSingleCharacters(t *testing.T) {
	got := extractTerms("a bb c")
	for _, term := range got {
		if len(term) < 2 {
			t.Fatalf("term %q should have been dropped (len < 2)", term)
		}
	}
}
