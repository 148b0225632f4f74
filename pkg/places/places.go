// Package places categorizes points of interest near a finished route.
package places

import (
	"math"
	"strings"

	"github.com/paulmach/orb"

	"github.com/azybler/gpsart/pkg/geo"
)

// defaultRadiusM is used when NearbyCategories is called with radiusM <= 0.
const defaultRadiusM = 50.0

// Place is a point of interest, active and categorized.
type Place struct {
	ID       string
	Position orb.Point // (lon, lat)
	Category string
	IsActive bool
}

// NearbyCategories groups active places within radiusM of any point on
// route by category, deduplicating by id within each category. Only "cafe"
// and "convenience" categories are recognized; everything else is ignored.
func NearbyCategories(route []orb.Point, table []Place, radiusM float64) map[string][]string {
	result := map[string][]string{"cafe": {}, "convenience": {}}
	if len(route) == 0 {
		return result
	}
	if radiusM <= 0 {
		radiusM = defaultRadiusM
	}

	seen := map[string]map[string]bool{"cafe": {}, "convenience": {}}

	for _, p := range table {
		if !p.IsActive {
			continue
		}
		cat := strings.ToLower(strings.TrimSpace(p.Category))
		if cat != "cafe" && cat != "convenience" {
			continue
		}

		minDist := math.Inf(1)
		for _, c := range route {
			d := geo.HaversinePoints(p.Position, c)
			if d < minDist {
				minDist = d
			}
		}
		if minDist > radiusM {
			continue
		}

		if !seen[cat][p.ID] {
			seen[cat][p.ID] = true
			result[cat] = append(result[cat], p.ID)
		}
	}

	return result
}
