package match

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jobmate/match-service/internal/model"
)

// phraseBoost is added to the similarity of vector-path matches whose title
// or description contains the full keyword phrase, clamped to 1.0. The
// predicate itself stays inclusive-OR; only ranking is adjusted.
const phraseBoost = 0.05

// VectorMatcher drives one request through the strategy stages:
// BUILT → COUNTED → {FALLBACK | VECTOR_SEARCH} → VALIDATED.
type VectorMatcher struct {
	store     Store
	validator *Validator
	logger    *zap.Logger

	// threshold is the probe count at or below which the fallback path is
	// taken; probeLimit caps the probe query itself.
	threshold  int
	probeLimit int
}

// NewVectorMatcher returns a configured VectorMatcher.
func NewVectorMatcher(store Store, validator *Validator, logger *zap.Logger, threshold, probeLimit int) *VectorMatcher {
	return &VectorMatcher{
		store:      store,
		validator:  validator,
		logger:     logger,
		threshold:  threshold,
		probeLimit: probeLimit,
	}
}

// Match executes the pipeline for one request and returns the validated
// records, the number of rejected rows, and the strategy stage that produced
// the rows.
func (m *VectorMatcher) Match(ctx context.Context, req model.MatchRequest) ([]model.JobMatch, int, Stage, error) {
	preds, err := BuildPredicates(req.Location, req.Keywords, req.Experience)
	if err != nil {
		return nil, 0, StageBuilt, err
	}
	stage := StageBuilt

	count, err := m.store.ProbeCount(ctx, preds, m.probeLimit)
	if err != nil {
		return nil, 0, stage, err
	}
	stage = m.advance(stage, StageCounted)

	next := PickStrategy(count, m.threshold)
	stage = m.advance(stage, next)

	var rows []JobRow
	switch next {
	case StageFallback:
		rows, err = m.store.Fallback(ctx, preds, req.Limit)
	default:
		rows, err = m.store.VectorSearch(ctx, preds, req.Embedding, req.Limit, req.Offset)
	}
	if err != nil {
		return nil, 0, stage, err
	}

	m.logger.Debug("search executed",
		zap.String("stage", string(stage)),
		zap.Int("probe_count", count),
		zap.Int("rows", len(rows)),
	)

	matches, rejected := m.validateRows(rows)
	produced := stage
	m.advance(stage, StageValidated)

	if next == StageVectorSearch {
		applyPhraseBoost(matches, req.Keywords)
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Similarity > matches[j].Similarity
		})
	}

	return matches, rejected, produced, nil
}

// advance guards stage movement against the transition table. A forbidden
// transition is a programming error; it is logged loudly and the target
// stage is used anyway so a request never wedges.
func (m *VectorMatcher) advance(from, to Stage) Stage {
	if !IsStageTransitionAllowed(from, to) {
		m.logger.Error("forbidden stage transition",
			zap.String("from", string(from)), zap.String("to", string(to)))
	}
	return to
}

// validateRows runs every row through the validator. Rejected rows are
// dropped with a count; when every row is rejected the result is an empty
// list plus a data-quality warning, never an error.
func (m *VectorMatcher) validateRows(rows []JobRow) ([]model.JobMatch, int) {
	matches := make([]model.JobMatch, 0, len(rows))
	rejected := 0
	for _, row := range rows {
		match, err := m.validator.Validate(row)
		if err != nil {
			rejected++
			m.logger.Warn("row rejected", zap.Error(err))
			continue
		}
		matches = append(matches, *match)
	}

	if rejected > 0 && len(matches) == 0 && len(rows) > 0 {
		m.logger.Warn("data quality: every returned row was rejected",
			zap.Int("rejected", rejected))
	}
	return matches, rejected
}

// applyPhraseBoost nudges full-phrase hits above single-token hits on the
// ranked path. Keyword lists of one bare word gain nothing from it.
func applyPhraseBoost(matches []model.JobMatch, keywords []string) {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) < 2 {
		return
	}
	phrase := strings.ToLower(strings.Join(cleaned, " "))

	for i := range matches {
		haystack := strings.ToLower(matches[i].Title + " " + matches[i].Description)
		if strings.Contains(haystack, phrase) {
			matches[i].Similarity += phraseBoost
			if matches[i].Similarity > 1.0 {
				matches[i].Similarity = 1.0
			}
		}
	}
}
