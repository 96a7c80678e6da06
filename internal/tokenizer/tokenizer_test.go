package tokenizer

import (
	"sort"
	"testing"
)

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestNameCanonicalization(t *testing.T) {
	want := []string{"profile", "user"}
	cases := []string{
		"getUserProfile",
		"user_profile",
		"UserProfile",
		"user-profile",
		"USER_PROFILE",
	}
	for _, c := range cases {
		got := sorted(Name(c))
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("Name(%q) = %v, want %v", c, got, want)
		}
	}
}

func TestNameAcronymRun(t *testing.T) {
	got := sorted(Name("HTMLParser"))
	want := []string{"html", "parser"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Name(HTMLParser) = %v, want %v", got, want)
	}
}

func TestNamePrefixAndSymbolStrip(t *testing.T) {
	got := Name("#main-navigation")
	want := []string{"main", "navigation"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Name(#main-navigation) = %v, want %v", got, want)
	}

	got = Name("__init__")
	if len(got) != 1 || got[0] != "init" {
		t.Fatalf("Name(__init__) = %v, want [init]", got)
	}
}

func TestMatchScoreExactAndSubstring(t *testing.T) {
	exact := MatchScore([]string{"user", "profile"}, "user_profile")
	if exact != 2.0 {
		t.Fatalf("expected exact score 2.0, got %v", exact)
	}

	partial := MatchScore([]string{"prof"}, "user_profile")
	if partial != 0.5 {
		t.Fatalf("expected substring score 0.5, got %v", partial)
	}
}

func TestOverlap(t *testing.T) {
	n := Overlap([]string{"user", "profile", "auth"}, []string{"profile", "other"})
	if n != 1 {
		t.Fatalf("expected overlap 1, got %d", n)
	}
}
