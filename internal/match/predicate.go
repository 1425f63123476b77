// Package match implements the vector similarity matching engine: predicate
// construction, the adaptive fallback/vector search strategy, row validation
// and the top-level match orchestrator.
package match

import (
	"fmt"
	"strings"

	"jobmate/match-service/internal/model"
)

// countryAliases normalises common shorthand to the canonical country name
// stored in the jobs table.
var countryAliases = map[string]string{
	"usa":                      "United States",
	"us":                       "United States",
	"united states of america": "United States",
	"uk":                       "United Kingdom",
	"great britain":            "United Kingdom",
	"uae":                      "United Arab Emirates",
	"deutschland":              "Germany",
	"holland":                  "Netherlands",
}

// NormalizeCountry maps a country alias to its canonical form. Unknown
// values pass through trimmed but otherwise untouched.
func NormalizeCountry(s string) string {
	s = strings.TrimSpace(s)
	if canonical, ok := countryAliases[strings.ToLower(s)]; ok {
		return canonical
	}
	return s
}

// PredicateSet is an ordered list of SQL clauses with positionally aligned
// bound parameters. Clauses always reference parameters through bind(), so
// clause arity and argument arity cannot drift apart.
type PredicateSet struct {
	clauses []string
	args    []any
}

// bind appends v to the argument list and returns its $n placeholder.
func (p *PredicateSet) bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

// add appends a complete clause.
func (p *PredicateSet) add(clause string) {
	p.clauses = append(p.clauses, clause)
}

// Where renders the clauses joined with AND, or "TRUE" when no predicate was
// emitted, so the caller can always interpolate it into a WHERE.
func (p *PredicateSet) Where() string {
	if len(p.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(p.clauses, " AND ")
}

// Args returns the bound parameters in positional order. Query layers append
// their trailing parameters (embedding, LIMIT, OFFSET) after these.
func (p *PredicateSet) Args() []any { return p.args }

// BuildPredicates converts the request's filters into a PredicateSet.
// Categories (location, keywords, experience) combine with AND; variants
// within a category combine with OR. Malformed input fails with a
// ValidationError before any clause is emitted.
func BuildPredicates(loc *model.LocationFilter, keywords []string, experience []string) (*PredicateSet, error) {
	if loc != nil {
		geoFields := 0
		if loc.Lat != nil {
			geoFields++
		}
		if loc.Lon != nil {
			geoFields++
		}
		if loc.RadiusKM != nil {
			geoFields++
		}
		if geoFields != 0 && geoFields != 3 {
			return nil, &ValidationError{Msg: "location latitude, longitude and radius must be provided together"}
		}
	}

	p := &PredicateSet{}

	if loc != nil {
		if loc.Country != "" {
			p.add(fmt.Sprintf("country = %s", p.bind(NormalizeCountry(loc.Country))))
		}
		if loc.City != "" {
			p.add(fmt.Sprintf("city = %s", p.bind(strings.TrimSpace(loc.City))))
		}
		if loc.HasGeo() {
			// Radius arrives in kilometers; ST_DWithin on geography wants meters.
			radiusM := *loc.RadiusKM * 1000
			point := fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography",
				p.bind(*loc.Lon), p.bind(*loc.Lat))
			p.add(fmt.Sprintf("(remote = true OR ST_DWithin(location::geography, %s, %s))",
				point, p.bind(radiusM)))
		}
	}

	if clause := p.keywordClause(keywords); clause != "" {
		p.add(clause)
	}

	if clause := p.experienceClause(experience); clause != "" {
		p.add(clause)
	}

	return p, nil
}

// keywordClause builds the title-or-description match for the keyword list.
//
// A single multi-word string is one atomic phrase and is never split: a
// request for "software engineer" must not match jobs that only contain
// "software". A list of two or more tokens matches the full phrase OR each
// individual token; the phrase variant is ranked higher downstream.
func (p *PredicateSet) keywordClause(keywords []string) string {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}

	variants := cleaned
	if len(cleaned) >= 2 {
		variants = append([]string{strings.Join(cleaned, " ")}, cleaned...)
	}

	alts := make([]string, 0, len(variants))
	for _, v := range variants {
		ph := p.bind("%" + v + "%")
		alts = append(alts, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", ph, ph))
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return "(" + strings.Join(alts, " OR ") + ")"
}

// experienceClause builds the OR-list over recognised experience levels.
// Unrecognised values are dropped; when none survive, the predicate is
// omitted entirely rather than matching nothing.
func (p *PredicateSet) experienceClause(experience []string) string {
	alts := make([]string, 0, len(experience))
	for _, raw := range experience {
		level, ok := model.ParseExperience(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		alts = append(alts, fmt.Sprintf("experience_level = %s", p.bind(string(level))))
	}
	if len(alts) == 0 {
		return ""
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return "(" + strings.Join(alts, " OR ") + ")"
}
