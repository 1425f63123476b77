// Package model defines the shared data structures for the match service.
package model

import "time"

// Experience values mirror the experience_level enum in PostgreSQL.
type Experience string

const (
	ExperienceEntry      Experience = "Entry-level"
	ExperienceMid        Experience = "Mid-level"
	ExperienceSenior     Experience = "Senior-level"
	ExperienceExecutive  Experience = "Executive-level"
	ExperienceInternship Experience = "Internship"
)

// ParseExperience converts a raw string to an Experience, reporting false for
// unknown values. Unknown values are dropped silently by the predicate
// builder rather than rejected, so there is no error type here.
func ParseExperience(s string) (Experience, bool) {
	e := Experience(s)
	switch e {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceExecutive, ExperienceInternship:
		return e, true
	}
	return "", false
}

// LocationFilter narrows matching by place. The geo triple (Lat, Lon,
// RadiusKM) is all-or-nothing: a partially specified triple is a validation
// error. RadiusKM is normalised to meters when the predicate is built.
type LocationFilter struct {
	Country  string   `json:"country,omitempty"`
	City     string   `json:"city,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	RadiusKM *float64 `json:"radiusKm,omitempty"`
	// Remote makes remote postings match regardless of distance.
	Remote bool `json:"remote,omitempty"`
}

// HasGeo reports whether the full geo triple is present.
func (l *LocationFilter) HasGeo() bool {
	return l != nil && l.Lat != nil && l.Lon != nil && l.RadiusKM != nil
}

// MatchRequest is the input to the match orchestrator. The caller owns it and
// passes it by value.
type MatchRequest struct {
	ResumeID   string
	UserID     string
	Embedding  []float32
	Location   *LocationFilter
	Keywords   []string
	Experience []string
	Limit      int
	Offset     int
	// Excluded is the union of applied and cooled job ids gathered by the
	// orchestrator before matching. Populated per request, never persisted.
	Excluded map[string]struct{}
	UseCache bool
}

// JobMatch is a validated job row. ID and Title are mandatory; everything
// else may be empty. Immutable after validation.
type JobMatch struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	WorkplaceType    string   `json:"workplaceType,omitempty"`
	Field            string   `json:"field,omitempty"`
	ExperienceLevel  string   `json:"experienceLevel,omitempty"`
	RequiredSkills   []string `json:"requiredSkills,omitempty"`
	Country          string   `json:"country,omitempty"`
	City             string   `json:"city,omitempty"`
	CompanyName      string   `json:"companyName,omitempty"`
	CompanyLogoURL   string   `json:"companyLogoUrl,omitempty"`
	SourcePortal     string   `json:"sourcePortal,omitempty"`
	// Similarity is 1 - cosine distance on the vector path and 0.0 on the
	// fallback path (unscored).
	Similarity float64    `json:"similarity"`
	PostedDate *time.Time `json:"postedDate,omitempty"`
	JobState   string     `json:"jobState,omitempty"`
	ApplyLink  string     `json:"applyLink,omitempty"`
}

// MatchResult is what the orchestrator hands back to the transport layer:
// the ordered matches plus request-level metadata.
type MatchResult struct {
	Matches  []JobMatch `json:"matches"`
	Rejected int        `json:"rejected"`
	CacheHit bool       `json:"cacheHit"`
	Strategy string     `json:"strategy,omitempty"`
}
