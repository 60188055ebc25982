package stages

import (
	"regexp"
	"sort"
	"strconv"
)

// MalformedStageNumber is the stage number given to IDs that do not parse,
// placing them after every valid stage.
const MalformedStageNumber = 999

var stageIDPattern = regexp.MustCompile(`^(?:stage-)?([0-9]+)([a-z])?`)

// ParseStageID splits an ID such as "stage-9a" into its number and optional
// split-stage suffix. IDs that do not parse yield (MalformedStageNumber, "").
func ParseStageID(id string) (int, string) {
	m := stageIDPattern.FindStringSubmatch(id)
	if m == nil {
		return MalformedStageNumber, ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return MalformedStageNumber, ""
	}
	return n, m[2]
}

// stageLess orders by stage number, then suffix; "" sorts before any letter.
func stageLess(a, b string) bool {
	na, sa := ParseStageID(a)
	nb, sb := ParseStageID(b)
	if na != nb {
		return na < nb
	}
	return sa < sb
}

// OrderStages returns a copy of ids sorted by (number, suffix). Equal keys
// keep their input order.
func OrderStages(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool { return stageLess(out[i], out[j]) })
	return out
}

// StageAxis deduplicates ids and orders them, giving the shared category axis
// for charts that span several years.
func StageAxis(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	return OrderStages(uniq)
}
