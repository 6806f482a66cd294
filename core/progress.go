package core

import (
	"fmt"
	"math"
	"strconv"
)

var suffixes = [5]string{"B", "KB", "MB", "GB", "TB"}

func round(val float64, roundOn float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	digit := pow * val
	_, div := math.Modf(digit)
	if div >= roundOn {
		return math.Ceil(digit) / pow
	}
	return math.Floor(digit) / pow
}

// FormatSize renders a byte count with at most two decimals, e.g. "238.42 MB".
func FormatSize(size int64) string {
	if size < 1 {
		return "0 B"
	}
	value := float64(size)
	order := 0
	for value >= 1024 && order < len(suffixes)-1 {
		value /= 1024
		order++
	}
	return strconv.FormatFloat(round(value, .5, 2), 'f', -1, 64) + " " + suffixes[order]
}

func formatTransfer(received, total int64) string {
	if total <= 0 {
		return FormatSize(received)
	}
	return FormatSize(received) + " / " + FormatSize(total)
}

func percentOf(received, total int64) int {
	if total <= 0 {
		return 0
	}
	if received >= total {
		return 100
	}
	return int(received * 100 / total)
}

// progressTracker maps per-item progress onto the whole batch. Each of the
// total items owns an equal share; reported values never move backwards,
// even when a retried download starts over.
type progressTracker struct {
	total    int
	reported int
}

func newProgressTracker(total int) *progressTracker {
	return &progressTracker{total: total}
}

func (this *progressTracker) Item(index, percent int) int {
	if this.total <= 0 {
		return this.reported
	}
	overall := (index*100 + clamp(percent, 0, 100)) / this.total
	if overall > this.reported {
		this.reported = clamp(overall, 0, 100)
	}
	return this.reported
}

func (this *progressTracker) Detail(received, total int64) string {
	return fmt.Sprintf("%d%% - %s", this.reported, formatTransfer(received, total))
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
