package geo

import (
	"math"
	"sort"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
)

// EarthRadiusMeters is the mean earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// Distance returns the haversine great-circle distance in meters between two
// coordinate pairs given in degrees.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ItemWithDistance annotates an item with its distance from a query point.
type ItemWithDistance struct {
	models.Item
	Distance float64 `json:"distance"`
}

// Nearby filters items to those within radius meters of (lat, lng) and
// returns them sorted ascending by distance. The projection is recomputed
// per call; the item slice is the source of truth.
func Nearby(items []models.Item, lat, lng, radius float64) []ItemWithDistance {
	result := make([]ItemWithDistance, 0, len(items))
	for _, item := range items {
		d := Distance(lat, lng, item.Latitude, item.Longitude)
		if d <= radius {
			result = append(result, ItemWithDistance{Item: item, Distance: d})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})

	return result
}
