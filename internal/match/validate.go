package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobmate/match-service/internal/model"
)

// Validator converts raw result rows into typed JobMatch records.
//
// Identity fields (id, title) fail loud: a bad id corrupts exclusion
// filtering and downstream joins. Presentation fields fail soft, logging and
// zeroing the field.
type Validator struct {
	logger *zap.Logger
}

// NewValidator returns a Validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate returns the typed record, or an error when the row lacks its
// identity fields. Rejected rows are dropped by the matcher, never surfaced
// as request failures.
func (v *Validator) Validate(row JobRow) (*model.JobMatch, error) {
	id, ok := coerceString(row["id"])
	if !ok || id == "" {
		return nil, fmt.Errorf("row rejected: missing id")
	}
	title, ok := coerceString(row["title"])
	if !ok || title == "" {
		return nil, fmt.Errorf("row rejected: missing title (id=%s)", id)
	}

	m := &model.JobMatch{ID: id, Title: title}

	m.Description = v.softString(id, "description", row)
	m.ShortDescription = v.softString(id, "short_description", row)
	m.WorkplaceType = v.softString(id, "workplace_type", row)
	m.Field = v.softString(id, "field", row)
	m.ExperienceLevel = v.softString(id, "experience_level", row)
	m.Country = v.softString(id, "country", row)
	m.City = v.softString(id, "city", row)
	m.CompanyName = v.softString(id, "company_name", row)
	m.CompanyLogoURL = v.softString(id, "company_logo_url", row)
	m.SourcePortal = v.softString(id, "source_portal", row)
	m.JobState = v.softString(id, "job_state", row)
	m.ApplyLink = v.softString(id, "apply_link", row)

	m.RequiredSkills = coerceSkills(row["required_skills"])

	if raw, present := row["similarity"]; present && raw != nil {
		score, ok := coerceFloat(raw)
		if !ok {
			v.logger.Warn("uncoercible similarity, zeroing",
				zap.String("job_id", id), zap.Any("value", raw))
		}
		m.Similarity = score
	}

	if raw, present := row["posted_date"]; present && raw != nil {
		ts, ok := coerceTime(raw)
		if !ok {
			v.logger.Warn("uncoercible posted_date, nulling",
				zap.String("job_id", id), zap.Any("value", raw))
		} else {
			m.PostedDate = &ts
		}
	}

	return m, nil
}

// softString coerces an optional text column, logging and zeroing on failure.
func (v *Validator) softString(id, column string, row JobRow) string {
	raw, present := row[column]
	if !present || raw == nil {
		return ""
	}
	s, ok := coerceString(raw)
	if !ok {
		v.logger.Warn("uncoercible column, zeroing",
			zap.String("job_id", id), zap.String("column", column))
		return ""
	}
	return s
}

// ─── Coercion helpers ────────────────────────────────────────────────────────

func coerceString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case []byte:
		return string(s), true
	case fmt.Stringer:
		return s.String(), true
	case int, int32, int64:
		return fmt.Sprint(s), true
	}
	return "", false
}

func coerceFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int32:
		return float64(f), true
	case int64:
		return float64(f), true
	case string:
		parsed, err := strconv.ParseFloat(f, 64)
		return parsed, err == nil
	}
	return 0, false
}

func coerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// coerceSkills normalises the required_skills column to an ordered list of
// trimmed strings. The column arrives either as a text array, a bracketed
// string ("[go, sql]") or a bare comma-separated string ("go, sql"); empty
// or absent input yields an empty list.
func coerceSkills(v any) []string {
	switch s := v.(type) {
	case nil:
		return []string{}
	case []string:
		return trimSkills(s)
	case []any:
		parts := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := coerceString(item); ok {
				parts = append(parts, str)
			}
		}
		return trimSkills(parts)
	case string:
		trimmed := strings.TrimSpace(s)
		trimmed = strings.TrimPrefix(trimmed, "[")
		trimmed = strings.TrimSuffix(trimmed, "]")
		if trimmed == "" {
			return []string{}
		}
		return trimSkills(strings.Split(trimmed, ","))
	case []byte:
		return coerceSkills(string(s))
	}
	return []string{}
}

func trimSkills(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
