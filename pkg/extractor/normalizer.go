package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

type Field string

const (
	FieldPlacing  Field = "placing"
	FieldName     Field = "contestant_name"
	FieldEarnings Field = "earnings"
)

// AliasTable maps each canonical field to the raw field names tried, in
// order. Keys are compared ignoring case. Canonical names come first so
// normalized records normalize to themselves.
type AliasTable map[Field][]string

var DefaultAliases = AliasTable{
	FieldPlacing: {
		"placing", "rank", "position", "place", "pos", "worldRank", "world_rank", "standing",
	},
	FieldName: {
		"contestant_name", "contestantName", "name", "athleteName", "athlete_name", "athlete",
		"contestant", "competitorName", "competitor", "fullName", "full_name", "displayName",
		"headerName", "heelerName", "ladyName", "playerName",
	},
	FieldEarnings: {
		"earnings", "totalEarnings", "total_earnings", "worldEarnings", "world_earnings",
		"money", "moneyWon", "money_won", "amount", "total", "worldTotal", "prizeMoney",
	},
}

var (
	nonDigit     = regexp.MustCompile(`\D`)
	nonMoneyChar = regexp.MustCompile(`[^0-9.\-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// nested objects holding a name or an amount
var (
	nestedNameKeys  = []string{"fullName", "full_name", "displayName", "name"}
	nestedMoneyKeys = []string{"amount", "total", "value", "earnings"}
)

type Normalizer struct {
	aliases AliasTable
}

func NewNormalizer(aliases AliasTable) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Normalizer{aliases: aliases}
}

// Normalize converts raw rows into canonical records, preserving order.
// Rows without a usable name are dropped; nothing is ever added.
func (n *Normalizer) Normalize(rows []RawRow, rc RowContext) []models.Standing {
	out := make([]models.Standing, 0, len(rows))
	for _, row := range rows {
		name := n.name(row)
		if name == "" {
			continue
		}
		out = append(out, models.Standing{
			Season:         rc.Season,
			EventCode:      string(rc.Event),
			Placing:        n.placing(row),
			ContestantName: name,
			Earnings:       n.earnings(row),
			SourceURL:      rc.SourceURL,
		})
	}
	return out
}

func (n *Normalizer) lookup(row RawRow, field Field) (Value, bool) {
	for _, alias := range n.aliases[field] {
		v, ok := row.Lookup(alias)
		if !ok || v.Kind == KindNull {
			continue
		}
		return v, true
	}
	return Value{}, false
}

func (n *Normalizer) placing(row RawRow) *int {
	v, ok := n.lookup(row, FieldPlacing)
	if !ok {
		return nil
	}
	return ParsePlacing(v)
}

func (n *Normalizer) name(row RawRow) string {
	for _, alias := range n.aliases[FieldName] {
		v, ok := row.Lookup(alias)
		if !ok {
			continue
		}
		if name := nameOf(v); name != "" {
			return name
		}
	}

	// any other *name* field holding text
	for _, m := range row {
		if m.Value.Kind == KindString && strings.Contains(strings.ToLower(m.Key), "name") {
			if name := cleanText(m.Value.Str); name != "" {
				return name
			}
		}
	}
	return ""
}

func (n *Normalizer) earnings(row RawRow) float64 {
	v, ok := n.lookup(row, FieldEarnings)
	if !ok {
		return 0
	}
	return ParseEarnings(v)
}

func nameOf(v Value) string {
	switch v.Kind {
	case KindString:
		return cleanText(v.Str)
	case KindObject:
		for _, k := range nestedNameKeys {
			if inner, ok := v.Object.Lookup(k); ok && inner.Kind == KindString {
				if name := cleanText(inner.Str); name != "" {
					return name
				}
			}
		}
		first, _ := v.Object.Lookup("firstName")
		last, _ := v.Object.Lookup("lastName")
		return cleanText(first.Str + " " + last.Str)
	}
	return ""
}

// ParsePlacing strips everything but digits and parses a positive rank.
func ParsePlacing(v Value) *int {
	var digits string
	switch v.Kind {
	case KindNumber:
		f, ok := v.Float()
		if !ok || f != math.Trunc(f) {
			return nil
		}
		digits = strconv.FormatFloat(f, 'f', 0, 64)
	case KindString:
		digits = nonDigit.ReplaceAllString(v.Str, "")
	default:
		return nil
	}

	if digits == "" {
		return nil
	}
	p, err := strconv.Atoi(digits)
	if err != nil || p <= 0 {
		return nil
	}
	return &p
}

// ParseEarnings returns a non-negative amount; anything unparseable is 0.
func ParseEarnings(v Value) float64 {
	var f float64
	switch v.Kind {
	case KindNumber:
		f, _ = v.Float()
	case KindString:
		cleaned := nonMoneyChar.ReplaceAllString(v.Str, "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case KindObject:
		for _, k := range nestedMoneyKeys {
			if inner, ok := v.Object.Lookup(k); ok && inner.Kind != KindObject {
				return ParseEarnings(inner)
			}
		}
		return 0
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
