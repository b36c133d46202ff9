package gate

import "strings"

// Filter is a content-keyword filter. Filters are checked in declaration order.
type Filter int

const (
	NoFilter Filter = iota - 1
	Remaster
	Live
	Acoustic
	Remix
	Cover
)

// FilterCount is the number of content filters.
const FilterCount = 5

// AllowFlags lets a filter's releases through, indexed by Filter.
type AllowFlags [FilterCount]bool

var filterNames = [FilterCount]string{"remaster", "live", "acoustic", "remix", "cover"}

// Keywords matched case-insensitively against release names.
var filterKeywords = [FilterCount][]string{
	Remaster: {"remaster"},
	Live:     {"(live", "[live", "- live", "live at ", "live from ", "live in ", "live session", "live version", "(en vivo"},
	Acoustic: {"acoustic", "unplugged"},
	Remix:    {"remix", "rmx", "(mix)", "re-mix"},
	Cover:    {"(cover", "[cover", "- cover", "cover version", "covers"},
}

func (f Filter) String() string {
	if f < 0 || int(f) >= FilterCount {
		return "none"
	}
	return filterNames[f]
}

// Keywords returns the keywords of f.
func (f Filter) Keywords() []string {
	if f < 0 || int(f) >= FilterCount {
		return nil
	}
	return append([]string(nil), filterKeywords[f]...)
}

// MatchFilter returns the first filter that is not allowed and whose
// keywords appear in name. Allowed filters are never checked.
func MatchFilter(name string, allow AllowFlags) (Filter, string, bool) {
	lower := strings.ToLower(name)
	for i := 0; i < FilterCount; i++ {
		if allow[i] {
			continue
		}
		for _, kw := range filterKeywords[i] {
			if strings.Contains(lower, kw) {
				return Filter(i), kw, true
			}
		}
	}
	return NoFilter, "", false
}
