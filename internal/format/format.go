package format

import (
	"fmt"
	"math"
	"time"
)

// byteUnits are the binary units used by FormatBytes, smallest first.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// TimestampLayout is the layout used for task timestamps in check details.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatBytes formats a byte count with one decimal place in binary units.
//
// The unit index is floor(round(log2(size)*4) / 40), clamped to the largest
// unit, so a value switches to the next unit slightly before reaching 1024
// of the current one (e.g. 1000 B renders as "1.0 KiB").
// Zero renders as "0.0 B"; negative values are formatted by magnitude with a
// leading minus sign.
func FormatBytes(size int64) string {
	if size == 0 {
		return "0.0 B"
	}
	if size < 0 {
		if size == math.MinInt64 {
			return "-8.0 EiB"
		}
		return "-" + FormatBytes(-size)
	}

	scaling := int(math.RoundToEven(math.Log2(float64(size))*4)) / 40
	if scaling > len(byteUnits)-1 {
		scaling = len(byteUnits) - 1
	}
	value := float64(size) / math.Pow(2, float64(10*scaling))
	return fmt.Sprintf("%.1f %s", value, byteUnits[scaling])
}

// FormatTimestamp renders a Unix timestamp in local time using TimestampLayout.
func FormatTimestamp(unix int64) string {
	return time.Unix(unix, 0).Format(TimestampLayout)
}

// FormatDuration formats an interval as a compact string, e.g. "45s", "2m" or "1h30m".
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d >= time.Second:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
