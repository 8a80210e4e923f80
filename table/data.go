// Formatters for the value types that appear in reports.

package table

import (
	"math"
	"strconv"
	"time"

	. "samse/common"
)

// Text for a value that cannot be computed, eg a percentage of zero.
const Undefined = "undefined"

func FormatString(s string, _ PrintMods) string {
	return s
}

func FormatInt(n int, _ PrintMods) string {
	return strconv.Itoa(n)
}

// yyyy-mm-ddThh:mm:ss as Slurm prints it, or seconds since epoch, or RFC3339.  `t` is a wall-clock
// time, it is taken to be local time for the latter two.

func FormatTimestamp(t time.Time, ctx PrintMods) string {
	switch {
	case (ctx & PrintModSec) != 0:
		return strconv.FormatInt(FromWallClock(t, time.Local).Unix(), 10)
	case (ctx & PrintModIso) != 0:
		return FromWallClock(t, time.Local).Format(time.RFC3339)
	default:
		return t.Format(SlurmTimeFormat)
	}
}

// [N day(s), ]H:MM:SS, or whole seconds.

func FormatDurationValue(d time.Duration, ctx PrintMods) string {
	if (ctx & PrintModSec) != 0 {
		return strconv.FormatInt(int64(d/time.Second), 10)
	}
	return FormatDuration(d)
}

// Rounded to `decimals` places, and Undefined for NaN and infinities.

func FormatFloat(f float64, decimals int, _ PrintMods) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}
