package league

import (
	"math"
	"time"
)

const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat, Lon float64
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Pow(math.Sin(dLon/2), 2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// UTCOffset approximates a venue's offset from UTC by its longitude.
func UTCOffset(lon float64) time.Duration {
	return time.Duration(math.Round(lon/15)) * time.Hour
}

// KickoffUTC converts a local kick-off time, written as if it were UTC, to
// UTC for a venue at the given longitude.
func KickoffUTC(local time.Time, lon float64) time.Time {
	return local.Add(-UTCOffset(lon))
}

// ParseDate accepts RFC 3339 timestamps, "2006-01-02T15:04" and plain dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	_, err := time.Parse(time.RFC3339, s)
	return time.Time{}, err
}
