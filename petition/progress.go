// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package petition

import (
	"math"

	"github.com/eerco/ensuring-integrity/models"
)

// DefaultTarget is the signature goal when none is configured
const DefaultTarget = 1000

// Progress computes the progress bar values. Percent is clamped to 100 and
// DisplayPercent is its floor.
func Progress(count, target int) models.ProgressResponse {
	if target <= 0 {
		target = DefaultTarget
	}
	if count < 0 {
		count = 0
	}

	percent := math.Min(float64(count)/float64(target)*100, 100)

	return models.ProgressResponse{
		Count:          count,
		Target:         target,
		Percent:        percent,
		DisplayPercent: int(math.Floor(percent)),
	}
}
