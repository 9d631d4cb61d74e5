package telescope

import "math"

// AngularDistance computes the great-circle separation between two alt/az
// positions using the Vincenty formula, treating altitude as latitude and
// azimuth as longitude. The result is always in [0, 180] degrees.
func AngularDistance(alt1, az1, alt2, az2 float64) float64 {
	lat1 := alt1 * math.Pi / 180
	lat2 := alt2 * math.Pi / 180
	dlon := (az2 - az1) * math.Pi / 180

	sinLat1, cosLat1 := math.Sin(lat1), math.Cos(lat1)
	sinLat2, cosLat2 := math.Sin(lat2), math.Cos(lat2)
	sinDlon, cosDlon := math.Sin(dlon), math.Cos(dlon)

	num := math.Sqrt(
		math.Pow(cosLat2*sinDlon, 2) +
			math.Pow(cosLat1*sinLat2-sinLat1*cosLat2*cosDlon, 2),
	)
	den := sinLat1*sinLat2 + cosLat1*cosLat2*cosDlon

	return math.Atan2(num, den) * 180 / math.Pi
}

// NormalizeAngle wraps angle into [min, max).
func NormalizeAngle(angle, min, max float64) float64 {
	span := max - min
	if span <= 0 {
		return angle
	}
	result := angle
	for result >= max {
		result -= span
	}
	for result < min {
		result += span
	}
	return result
}

// Clamp restricts value to [low, high].
func Clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

// AltAzDelta returns (deltaAlt, deltaAz) from current to target, with the
// azimuth component wrapped onto the shortest path in (-180, 180].
func AltAzDelta(currentAlt, currentAz, targetAlt, targetAz float64) (deltaAlt, deltaAz float64) {
	deltaAlt = targetAlt - currentAlt
	deltaAz = targetAz - currentAz
	switch {
	case deltaAz > 180.0:
		deltaAz -= 360.0
	case deltaAz <= -180.0:
		deltaAz += 360.0
	}
	return deltaAlt, deltaAz
}

// DegreesToArcsec converts degrees to arcseconds.
func DegreesToArcsec(deg float64) float64 { return deg * 3600.0 }

// ArcsecToDegrees converts arcseconds to degrees.
func ArcsecToDegrees(arcsec float64) float64 { return arcsec / 3600.0 }
