package model_test

import (
	"testing"

	"jobmate/match-service/internal/model"
)

// ── ParseExperience ────────────────────────────────────────────────────────

func TestParseExperience_ValidValues(t *testing.T) {
	valid := []string{"Entry-level", "Mid-level", "Senior-level", "Executive-level", "Internship"}
	for _, s := range valid {
		got, ok := model.ParseExperience(s)
		if !ok {
			t.Errorf("ParseExperience(%q) should be recognised", s)
		}
		if string(got) != s {
			t.Errorf("ParseExperience(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseExperience_InvalidValues(t *testing.T) {
	invalid := []string{"", "senior-level", "SENIOR", "Executive", " Mid-level"}
	for _, s := range invalid {
		if _, ok := model.ParseExperience(s); ok {
			t.Errorf("ParseExperience(%q) should not be recognised", s)
		}
	}
}

// ── LocationFilter.HasGeo ──────────────────────────────────────────────────

func TestHasGeo(t *testing.T) {
	lat, lon, radius := 1.0, 2.0, 3.0

	cases := []struct {
		name string
		loc  *model.LocationFilter
		want bool
	}{
		{"nil filter", nil, false},
		{"empty", &model.LocationFilter{}, false},
		{"full triple", &model.LocationFilter{Lat: &lat, Lon: &lon, RadiusKM: &radius}, true},
		{"missing radius", &model.LocationFilter{Lat: &lat, Lon: &lon}, false},
		{"missing lat", &model.LocationFilter{Lon: &lon, RadiusKM: &radius}, false},
	}
	for _, c := range cases {
		if got := c.loc.HasGeo(); got != c.want {
			t.Errorf("%s: HasGeo() = %v, want %v", c.name, got, c.want)
		}
	}
}
