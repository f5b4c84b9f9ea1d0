package extractor

import (
	"sort"
	"strings"
)

// Selection is the winning array of a SelectArray call.
type Selection struct {
	Source string
	Path   []string
	Rows   []RawRow
	Size   int
}

// Fields lists the keys of the first selected row.
func (s Selection) Fields() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0].Keys()
}

// SelectArray returns the largest qualifying array of the first source that
// has one. An array qualifies when its first object element looks like a
// standings row. Ties keep the array found first.
func SelectArray(sources []Source) (Selection, bool) {
	for _, src := range sources {
		best, ok := bestArray(src.Value)
		if !ok {
			continue
		}
		return Selection{
			Source: src.Name,
			Path:   best.Path,
			Rows:   objectsOf(best.Array),
			Size:   len(best.Array),
		}, true
	}
	return Selection{}, false
}

func bestArray(v Value) (DiscoveredArray, bool) {
	var best DiscoveredArray
	found := false

	for arr := range Scan(v) {
		sample, ok := firstObject(arr.Array)
		if !ok || !LooksLikeRow(sample) {
			continue
		}
		if !found || len(arr.Array) > len(best.Array) {
			best = arr
			found = true
		}
	}
	return best, found
}

func firstObject(items []Value) (Object, bool) {
	for _, item := range items {
		if item.Kind == KindObject {
			return item.Object, true
		}
	}
	return nil, false
}

func objectsOf(items []Value) []RawRow {
	rows := make([]RawRow, 0, len(items))
	for _, item := range items {
		if item.Kind == KindObject {
			rows = append(rows, item.Object)
		}
	}
	return rows
}

// OrderResponses puts responses whose URL contains keyword first, keeping the
// capture order inside each group.
func OrderResponses(responses []CapturedResponse, keyword string) []CapturedResponse {
	out := make([]CapturedResponse, len(responses))
	copy(out, responses)
	if keyword == "" {
		return out
	}
	keyword = strings.ToLower(keyword)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Contains(strings.ToLower(out[i].URL), keyword) &&
			!strings.Contains(strings.ToLower(out[j].URL), keyword)
	})
	return out
}
