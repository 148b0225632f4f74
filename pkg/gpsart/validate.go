package gpsart

import "fmt"

// targetDistanceTolerance is how far below the drawing's minimum distance a
// requested target is still allowed to go — 0.5 means the target may be as
// low as half the minimum distance and still validate.
const targetDistanceTolerance = 0.5

// Validation reports whether a requested target distance is large enough to
// trace the figure, and if not, offers advisory options.
type Validation struct {
	IsValid             bool
	MinimumDistanceM    float64
	MinimumDistanceKM   float64
	TargetDistanceM     float64
	TargetDistanceKM    float64
	ShortageM           float64
	ShortageKM          float64
	Message             string
	Options             []string
}

// ValidateTargetDistance checks a requested target distance against the
// drawing's minimum traceable distance, with a tolerance that allows the
// target to fall somewhat short of the minimum before it's rejected.
func ValidateTargetDistance(minimumDistanceM, targetDistanceM float64) Validation {
	minimumKM := minimumDistanceM / 1000.0
	targetKM := targetDistanceM / 1000.0

	threshold := minimumDistanceM * (1 - targetDistanceTolerance)
	isValid := targetDistanceM >= threshold

	v := Validation{
		IsValid:           isValid,
		MinimumDistanceM:  minimumDistanceM,
		MinimumDistanceKM: minimumKM,
		TargetDistanceM:   targetDistanceM,
		TargetDistanceKM:  targetKM,
	}

	if isValid {
		v.Message = fmt.Sprintf("target distance %.2fkm is sufficient (minimum: %.2fkm)", targetKM, minimumKM)
		return v
	}

	shortage := minimumDistanceM - targetDistanceM
	v.ShortageM = shortage
	v.ShortageKM = shortage / 1000.0
	v.Message = fmt.Sprintf(
		"target distance %.2fkm is too short.\nthis drawing needs at least %.2fkm.\nshortfall: %.2fkm",
		targetKM, minimumKM, v.ShortageKM,
	)
	v.Options = []string{
		fmt.Sprintf("increase the target distance to at least %.2fkm", minimumKM),
		"simplify the drawing",
		"add a loop to the route (may slightly change the shape)",
	}
	return v
}
