package humanize

import (
	"fmt"
	"time"
)

const (
	// For decimal (SI) units: KB, MB, GB, etc.
	SIUnitBase = 1000

	// For binary (IEC) units: KiB, MiB, GiB, etc.
	IECUnitBase = 1024
)

var (
	siUnits  = []string{"", "K", "M", "G", "T", "P", "E"}
	iecUnits = []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei"}
)

func Bytes(bytes int) string  { return formatUnit(bytes, SIUnitBase, siUnits) + "Bytes" }
func IBytes(bytes int) string { return formatUnit(bytes, IECUnitBase, iecUnits) + "Bytes" }

func formatUnit(b, base int, units []string) string {
	if b < base {
		return fmt.Sprintf("%d %s", b, units[0])
	}
	var value float64 = float64(b)
	for i := 1; i < len(units); i++ {
		value /= float64(base)
		if value < float64(base) {
			return fmt.Sprintf("%.1f %s", value, units[i])
		}
	}
	return fmt.Sprintf("%.1f %s", value, units[len(units)-1])
}

// Duration formats d in the largest unit below it, ping style ("0.412 ms").
func Duration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%d ns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.3f us", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.3f s", d.Seconds())
	}
}
