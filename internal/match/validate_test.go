package match_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobmate/match-service/internal/match"
)

func validRow(id string) match.JobRow {
	return match.JobRow{
		"id":              id,
		"title":           "Backend Engineer",
		"description":     "Build services",
		"required_skills": "[go, sql, docker]",
		"country":         "France",
		"similarity":      0.91,
	}
}

func TestValidate_FullRow(t *testing.T) {
	v := match.NewValidator(zap.NewNop())

	posted := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	row := validRow("job-1")
	row["posted_date"] = posted
	row["company_name"] = "Acme"

	m, err := v.Validate(row)
	require.NoError(t, err)

	assert.Equal(t, "job-1", m.ID)
	assert.Equal(t, "Backend Engineer", m.Title)
	assert.Equal(t, []string{"go", "sql", "docker"}, m.RequiredSkills)
	assert.Equal(t, "Acme", m.CompanyName)
	assert.Equal(t, 0.91, m.Similarity)
	require.NotNil(t, m.PostedDate)
	assert.True(t, posted.Equal(*m.PostedDate))
}

// ── Identity fields fail loud ──────────────────────────────────────────────

func TestValidate_MissingIdentityRejects(t *testing.T) {
	v := match.NewValidator(zap.NewNop())

	noID := validRow("")
	_, err := v.Validate(noID)
	assert.Error(t, err)

	noTitle := validRow("job-2")
	noTitle["title"] = nil
	_, err = v.Validate(noTitle)
	assert.Error(t, err)

	missingTitleKey := match.JobRow{"id": "job-3"}
	_, err = v.Validate(missingTitleKey)
	assert.Error(t, err)
}

// A batch of 10 rows with one defect yields exactly 9 records, never an error.
func TestValidate_BatchWithOneDefect(t *testing.T) {
	v := match.NewValidator(zap.NewNop())

	kept := 0
	rejected := 0
	for i := 0; i < 10; i++ {
		row := validRow(fmt.Sprintf("job-%d", i))
		if i == 7 {
			row["title"] = ""
		}
		if _, err := v.Validate(row); err != nil {
			rejected++
			continue
		}
		kept++
	}

	assert.Equal(t, 9, kept)
	assert.Equal(t, 1, rejected)
}

// ── Presentation fields fail soft ──────────────────────────────────────────

func TestValidate_UncoerciblePresentationFieldNulled(t *testing.T) {
	v := match.NewValidator(zap.NewNop())

	row := validRow("job-4")
	row["company_name"] = []float64{1.5} // nonsense type
	row["posted_date"] = "not a date"
	row["similarity"] = "garbage"

	m, err := v.Validate(row)
	require.NoError(t, err, "presentation defects must not reject the row")
	assert.Empty(t, m.CompanyName)
	assert.Nil(t, m.PostedDate)
	assert.Zero(t, m.Similarity)
}

// ── Skills coercion ────────────────────────────────────────────────────────

func TestValidate_SkillsForms(t *testing.T) {
	v := match.NewValidator(zap.NewNop())

	cases := []struct {
		name string
		in   any
		want []string
	}{
		{"bracketed string", "[go, sql]", []string{"go", "sql"}},
		{"bare comma string", "go,sql, docker ", []string{"go", "sql", "docker"}},
		{"quoted entries", `["go", 'sql']`, []string{"go", "sql"}},
		{"string slice", []string{" go ", "sql"}, []string{"go", "sql"}},
		{"any slice", []any{"go", "sql"}, []string{"go", "sql"}},
		{"empty string", "", []string{}},
		{"empty brackets", "[]", []string{}},
		{"nil", nil, []string{}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row := validRow("job-5")
			row["required_skills"] = c.in
			m, err := v.Validate(row)
			require.NoError(t, err)
			assert.Equal(t, c.want, m.RequiredSkills)
		})
	}
}

func TestValidate_MissingSimilarityDefaultsToZero(t *testing.T) {
	v := match.NewValidator(zap.NewNop())

	row := validRow("job-6")
	delete(row, "similarity")
	m, err := v.Validate(row)
	require.NoError(t, err)
	assert.Zero(t, m.Similarity)
}
