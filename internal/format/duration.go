package format

import (
	"fmt"
	"math"
)

type intervalUnit struct {
	factor float64
	name   string
}

var intervalUnits = []intervalUnit{
	{0.001, "ms"},
	{1, "sec"},
	{60, "min"},
	{3600, "hr"},
	{86400, "d"},
}

// Interval renders a duration given in fractional seconds as a
// largest-first compound phrase, e.g. "1 d 1 hr 1 min 1 sec". Components
// with a zero value are omitted rather than printed as "0 min". Sub-second
// values render as "<n> ms"; once a unit larger than a second is selected
// as the top unit, milliseconds never appear.
func Interval(seconds float64) string {
	idx := len(intervalUnits) - 1
	for idx > 0 && seconds < intervalUnits[idx].factor {
		idx--
	}

	whole := math.Floor(seconds / intervalUnits[idx].factor)
	remaining := math.Mod(seconds, intervalUnits[idx].factor)

	out := fmt.Sprintf("%d %s", uint64(whole), intervalUnits[idx].name)

	top := idx
	for remaining > 0 && idx > 0 {
		idx--
		if idx == 0 && top > 1 {
			break
		}
		whole = math.Floor(remaining / intervalUnits[idx].factor)
		remaining = math.Mod(remaining, intervalUnits[idx].factor)
		if whole == 0 {
			continue
		}
		out += fmt.Sprintf(" %d %s", uint64(whole), intervalUnits[idx].name)
	}
	return out
}
