package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/match-service/internal/cache"
	"jobmate/match-service/internal/model"
)

func fpReq() model.MatchRequest {
	lat, lon, radius := 48.85, 2.35, 50.0
	return model.MatchRequest{
		ResumeID:   "resume-1",
		UserID:     "user-1",
		Embedding:  []float32{0.1, 0.2},
		Location:   &model.LocationFilter{Country: "France", Lat: &lat, Lon: &lon, RadiusKM: &radius},
		Keywords:   []string{"backend", "go"},
		Experience: []string{"Senior-level"},
		Limit:      10,
		Offset:     0,
		Excluded:   map[string]struct{}{"job-1": {}, "job-2": {}},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	assert.Equal(t, cache.Fingerprint(fpReq()), cache.Fingerprint(fpReq()))
}

// The embedding is represented by the resume id, not its raw values: two
// requests for the same resume must hit the same cache line even if the
// vector was re-generated in between.
func TestFingerprint_IgnoresRawEmbedding(t *testing.T) {
	a := fpReq()
	b := fpReq()
	b.Embedding = []float32{9.9, 8.8}
	assert.Equal(t, cache.Fingerprint(a), cache.Fingerprint(b))
}

func TestFingerprint_KeywordOrderInsensitive(t *testing.T) {
	a := fpReq()
	b := fpReq()
	b.Keywords = []string{"go", "backend"}
	assert.Equal(t, cache.Fingerprint(a), cache.Fingerprint(b))
}

func TestFingerprint_SensitiveFields(t *testing.T) {
	base := cache.Fingerprint(fpReq())

	cases := map[string]func(*model.MatchRequest){
		"resume":     func(r *model.MatchRequest) { r.ResumeID = "resume-2" },
		"user":       func(r *model.MatchRequest) { r.UserID = "user-2" },
		"offset":     func(r *model.MatchRequest) { r.Offset = 10 },
		"limit":      func(r *model.MatchRequest) { r.Limit = 20 },
		"country":    func(r *model.MatchRequest) { r.Location.Country = "Germany" },
		"radius":     func(r *model.MatchRequest) { *r.Location.RadiusKM = 25 },
		"keywords":   func(r *model.MatchRequest) { r.Keywords = []string{"backend"} },
		"experience": func(r *model.MatchRequest) { r.Experience = []string{"Entry-level"} },
	}

	for name, mutate := range cases {
		req := fpReq()
		mutate(&req)
		assert.NotEqual(t, base, cache.Fingerprint(req), "changing %s must change the fingerprint", name)
	}
}

// A changed exclusion set yields a different fingerprint even though only a
// digest of the ids is folded in.
func TestFingerprint_ExclusionSetSensitive(t *testing.T) {
	base := cache.Fingerprint(fpReq())

	grown := fpReq()
	grown.Excluded["job-3"] = struct{}{}
	assert.NotEqual(t, base, cache.Fingerprint(grown))

	empty := fpReq()
	empty.Excluded = nil
	assert.NotEqual(t, base, cache.Fingerprint(empty))
}

func TestFingerprint_ExclusionOrderInsensitive(t *testing.T) {
	// Map iteration order varies; the digest sorts ids first. Run a few
	// times to shake out ordering flakes.
	base := cache.Fingerprint(fpReq())
	for i := 0; i < 10; i++ {
		assert.Equal(t, base, cache.Fingerprint(fpReq()))
	}
}

func TestFingerprint_NilLocation(t *testing.T) {
	a := fpReq()
	a.Location = nil
	b := fpReq()
	b.Location = nil
	assert.Equal(t, cache.Fingerprint(a), cache.Fingerprint(b))
	assert.NotEqual(t, cache.Fingerprint(fpReq()), cache.Fingerprint(a))
}
