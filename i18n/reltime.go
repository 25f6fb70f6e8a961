// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

var greekMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "%s λίγα δευτερόλεπτα", DivBy: 1},
	{D: 2 * time.Minute, Format: "%s 1 λεπτό", DivBy: 1},
	{D: time.Hour, Format: "%s %d λεπτά", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s 1 ώρα", DivBy: 1},
	{D: humanize.Day, Format: "%s %d ώρες", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s 1 ημέρα", DivBy: 1},
	{D: humanize.Week, Format: "%s %d ημέρες", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s 1 εβδομάδα", DivBy: 1},
	{D: humanize.Month, Format: "%s %d εβδομάδες", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s 1 μήνα", DivBy: 1},
	{D: humanize.Year, Format: "%s %d μήνες", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "%s 1 χρόνο", DivBy: 1},
	{D: math.MaxInt64, Format: "%s %d χρόνια", DivBy: humanize.Year},
}

// RelativeTime renders then relative to now ("3 minutes ago", "πριν από 3
// λεπτά"). Anything under a minute old is "just now".
func (b *Bundle) RelativeTime(lang string, then, now time.Time) string {
	if then.IsZero() {
		return ""
	}
	diff := now.Sub(then)
	if diff >= 0 && diff < time.Minute {
		return b.T(lang, "just_now")
	}
	if lang == "el" {
		return humanize.CustomRelTime(then, now, "πριν από", "σε", greekMagnitudes)
	}
	return humanize.RelTime(then, now, "ago", "from now")
}
