package extractor

import "strings"

var (
	nameVocabulary  = []string{"name", "contestant", "athlete", "header", "heeler", "lady", "competitor", "position"}
	moneyVocabulary = []string{"earn", "money", "total", "amount", "world"}
)

// LooksLikeRow reports whether obj has both a name-like and a money-like
// field. Either one alone is not enough.
func LooksLikeRow(obj Object) bool {
	var hasName, hasMoney bool
	for _, m := range obj {
		key := strings.ToLower(m.Key)
		if !hasName && containsAny(key, nameVocabulary) {
			hasName = true
		}
		if !hasMoney && containsAny(key, moneyVocabulary) {
			hasMoney = true
		}
		if hasName && hasMoney {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
