package common

import (
	"fmt"
	"time"
)

// Duration formatting.  The format is H:MM:SS, prefixed by "1 day, " or "N days, " when the
// duration is a day or more; this is the format users of the old reports know.  Fractional seconds
// are dropped and negative durations print as zero.

func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	days := secs / 86400
	secs %= 86400
	hms := fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
	switch {
	case days == 1:
		return "1 day, " + hms
	case days > 1:
		return fmt.Sprintf("%d days, %s", days, hms)
	default:
		return hms
	}
}
