package geo

import (
	"math"
	"sort"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

const earthRadiusKM = 6371.0

// HaversineKM computes the great-circle distance between two points in km.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// Ranked pairs a candidate with its distance from the viewer.
// DistanceKM is nil when either side has no location.
type Ranked struct {
	User       db.User
	DistanceKM *float64
}

// Rank orders candidates by proximity to the viewer.
//
// Viewer without a location: ranking by distance is impossible, so candidates
// come back reverse-chronological (newest first) with unknown distances, and
// any radius filter is ignored.
//
// Viewer with a location: candidates are sorted ascending by distance, ties
// broken by creation time descending. Candidates without their own location
// keep an unknown distance and sort last; they are only excluded when a
// radius filter is active, since membership in-radius cannot be proven.
//
// A radius <= 0 passes no candidates. A nil radius applies no filter.
func Rank(viewerLat, viewerLon *float64, candidates []db.User, radiusKM *float64) []Ranked {
	if viewerLat == nil || viewerLon == nil {
		out := make([]Ranked, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, Ranked{User: c})
		}
		sort.SliceStable(out, func(i, j int) bool {
			return newerFirst(out[i].User, out[j].User)
		})
		return out
	}

	if radiusKM != nil && *radiusKM <= 0 {
		return []Ranked{}
	}

	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		var dist *float64
		if c.Latitude != nil && c.Longitude != nil {
			d := HaversineKM(*viewerLat, *viewerLon, *c.Latitude, *c.Longitude)
			dist = &d
		}

		if radiusKM != nil {
			if dist == nil || *dist > *radiusKM {
				continue
			}
		}

		out = append(out, Ranked{User: c, DistanceKM: dist})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DistanceKM, out[j].DistanceKM
		switch {
		case di == nil && dj == nil:
			return newerFirst(out[i].User, out[j].User)
		case di == nil:
			return false
		case dj == nil:
			return true
		case *di != *dj:
			return *di < *dj
		default:
			return newerFirst(out[i].User, out[j].User)
		}
	})

	return out
}

func newerFirst(a, b db.User) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
