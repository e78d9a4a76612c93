// Package report converts raw usage numbers into human readable form
// and renders the HTML disk report.
package report

import (
	"math"
	"strconv"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/nuclearlighters/diskmon/internal/udisk"
)

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// SizeConverter converts a byte count into the largest unit whose scaled
// value stays >= 1, rounded to two decimals with a whole-number result
// rendered without a fractional part. Zero is special-cased to "0 B".
func SizeConverter(byteSize uint64) string {
	if byteSize == 0 {
		return "0 B"
	}
	v := float64(byteSize)
	idx := 0
	for v >= 1024 && idx < len(sizeUnits)-1 {
		v /= 1024
		idx++
	}
	return FormatNumber(math.Round(v*100)/100) + " " + sizeUnits[idx]
}

// FormatNumber renders a float without a trailing zero fraction: 1.0
// becomes "1", 1.5 stays "1.5".
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HumanizeUsage converts a gopsutil usage snapshot into the report's
// human readable form.
func HumanizeUsage(stat *disk.UsageStat) udisk.Usage {
	return udisk.Usage{
		Total:   SizeConverter(stat.Total),
		Used:    SizeConverter(stat.Used),
		Free:    SizeConverter(stat.Free),
		Percent: math.Round(stat.UsedPercent*100) / 100,
	}
}
