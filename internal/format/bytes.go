// Package format renders byte counts and durations as the human-readable
// phrases the progress view prints (spec §4.6). The unit tables and
// selection rule are ported from the original's copyByteCountPhrase and
// copyIntervalPhrase (original_source/dd-parallel-posix/formatting_utils.c).
package format

import (
	"fmt"
	"math"
)

type byteUnit struct {
	factor float64
	name   string
}

var byteUnits = []byteUnit{
	{1, "bytes"},
	{1 << 10, "KiB"},
	{1 << 20, "MiB"},
	{1 << 30, "GiB"},
	{1 << 40, "TiB"},
	{1 << 50, "PiB"},
	{1 << 60, "EiB"},
	// YiB/ZiB exceed uint64 range but are kept in the table so the
	// selection loop never runs past the end of it, matching the
	// original's 9-entry table.
	{1 << 60 * 1024, "YiB"},
	{1 << 60 * 1024 * 1024, "ZiB"},
}

// ByteCount renders n using the largest binary unit with factor <= n. An
// exact multiple of that unit renders as an integer; anything else renders
// with two fractional digits.
func ByteCount(n uint64) string {
	v := float64(n)
	idx := len(byteUnits) - 1
	for idx > 0 && v < byteUnits[idx].factor {
		idx--
	}
	unit := byteUnits[idx]

	remainder := math.Mod(v, unit.factor)
	if remainder > 0 {
		return fmt.Sprintf("%.2f %s", v/unit.factor, unit.name)
	}
	return fmt.Sprintf("%d %s", uint64(v/unit.factor), unit.name)
}
