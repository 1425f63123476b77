package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"jobmate/match-service/internal/model"
)

// fingerprintVersion is bumped whenever a field is added to or removed from
// the fingerprint, so a deploy never reads cache lines written under an
// incompatible key shape.
const fingerprintVersion = "v1"

// Fingerprint derives the deterministic cache key for a request.
//
// The embedding itself is represented by the resume id, since two requests
// for the same resume must hit the same cache line. The exclusion set
// contributes a digest of its sorted ids rather than its full contents, to
// bound key size while still changing the key whenever the set changes.
func Fingerprint(req model.MatchRequest) string {
	keywords := append([]string(nil), req.Keywords...)
	sort.Strings(keywords)

	experience := append([]string(nil), req.Experience...)
	sort.Strings(experience)

	var loc string
	if req.Location != nil {
		lat, lon, radius := "-", "-", "-"
		if req.Location.Lat != nil {
			lat = fmt.Sprintf("%.6f", *req.Location.Lat)
		}
		if req.Location.Lon != nil {
			lon = fmt.Sprintf("%.6f", *req.Location.Lon)
		}
		if req.Location.RadiusKM != nil {
			radius = fmt.Sprintf("%.3f", *req.Location.RadiusKM)
		}
		loc = strings.Join([]string{
			req.Location.Country, req.Location.City, lat, lon, radius,
			fmt.Sprintf("%t", req.Location.Remote),
		}, ",")
	}

	canonical := strings.Join([]string{
		fingerprintVersion,
		req.ResumeID,
		req.UserID,
		fmt.Sprintf("%d", req.Limit),
		fmt.Sprintf("%d", req.Offset),
		loc,
		strings.Join(keywords, ","),
		strings.Join(experience, ","),
		exclusionDigest(req.Excluded),
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return fingerprintVersion + ":" + hex.EncodeToString(sum[:])
}

// exclusionDigest hashes the sorted exclusion ids.
func exclusionDigest(excluded map[string]struct{}) string {
	if len(excluded) == 0 {
		return ""
	}
	ids := make([]string, 0, len(excluded))
	for id := range excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return hex.EncodeToString(sum[:])
}
