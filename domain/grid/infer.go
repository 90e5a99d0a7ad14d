package grid

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Classification thresholds. The datetime sniff is best-effort: a
// false negative leaves the column categorical, never an error.
const (
	datetimeSniffSample   = 100
	numericCoercionKeep   = 0.9
	numericCoercionUnique = 1000
)

var datetimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),          // YYYY-MM-DD
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),          // MM/DD/YYYY
	regexp.MustCompile(`^\d{1,2}\s[A-Za-z]{3}\s\d{4}`), // D MMM YYYY
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2 Jan 2006",
}

// missingTokens are cell values treated as null in addition to blanks
var missingTokens = map[string]bool{
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

func isMissingCell(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return missingTokens[strings.ToLower(s)]
}

// Build constructs a TypedGrid from raw string cells. Column names are
// normalized and deduplicated, then each column is classified:
// all-boolean text becomes Boolean, date-looking text that fully parses
// becomes Datetime, mostly-numeric text becomes Numeric, and integer
// columns holding only {0,1} become Boolean. Classification never
// fails; anything unclassifiable stays Categorical.
func Build(header []string, rows [][]string) *TypedGrid {
	names := normalizeNames(header)

	g := &TypedGrid{
		cols:  make([]Column, len(names)),
		index: make(map[string]int, len(names)),
		rows:  len(rows),
	}

	for j, name := range names {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		g.cols[j] = classifyColumn(name, raw)
		g.index[name] = j
	}

	return g
}

// normalizeNames lowercases names, replaces dots and spaces with
// underscores, and disambiguates duplicates with _1, _2, ... suffixes
// in first-seen order.
func normalizeNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, name := range header {
		name = strings.ToLower(strings.NewReplacer(".", "_", " ", "_").Replace(name))
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
			seen[name] = 0
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func classifyColumn(name string, raw []string) Column {
	valid := make([]bool, len(raw))
	nonMissing := 0
	for i, s := range raw {
		if !isMissingCell(s) {
			valid[i] = true
			nonMissing++
		}
	}

	if col, ok := tryBoolean(name, raw, valid, nonMissing); ok {
		return col
	}
	if col, ok := tryDatetime(name, raw, valid, nonMissing); ok {
		return col
	}
	if col, ok := tryNumeric(name, raw, valid, nonMissing); ok {
		return col
	}

	cats := make([]string, len(raw))
	for i, s := range raw {
		if valid[i] {
			cats[i] = strings.TrimSpace(s)
		}
	}
	return Column{Name: name, Kind: Categorical, cats: cats, valid: valid}
}

// tryBoolean promotes columns whose non-missing cells are all literal
// true/false tokens. This is the string-grid analog of a native
// boolean dtype and runs before any other sniffing.
func tryBoolean(name string, raw []string, valid []bool, nonMissing int) (Column, bool) {
	if nonMissing == 0 {
		return Column{}, false
	}
	bools := make([]bool, len(raw))
	for i, s := range raw {
		if !valid[i] {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			bools[i] = true
		case "false":
			bools[i] = false
		default:
			return Column{}, false
		}
	}
	return Column{Name: name, Kind: Boolean, bools: bools, valid: valid}, true
}

// tryDatetime samples non-missing cells against known date patterns
// and, on any match, attempts a full-column parse. Promotion requires
// every non-missing cell to parse; a single failure keeps the column
// categorical.
func tryDatetime(name string, raw []string, valid []bool, nonMissing int) (Column, bool) {
	if nonMissing == 0 {
		return Column{}, false
	}

	sampled, matched := 0, false
	for i, s := range raw {
		if !valid[i] {
			continue
		}
		s = strings.TrimSpace(s)
		for _, pat := range datetimePatterns {
			if pat.MatchString(s) {
				matched = true
				break
			}
		}
		sampled++
		if matched || sampled >= datetimeSniffSample {
			break
		}
	}
	if !matched {
		return Column{}, false
	}

	times := make([]time.Time, len(raw))
	for i, s := range raw {
		if !valid[i] {
			continue
		}
		t, ok := parseDatetime(strings.TrimSpace(s))
		if !ok {
			return Column{}, false
		}
		times[i] = t
	}
	return Column{Name: name, Kind: Datetime, times: times, valid: valid}, true
}

func parseDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tryNumeric coerces a column to floats when at least 90% of its
// non-missing cells parse, so one stray token cannot destroy an
// otherwise numeric column. Columns with more than 1000 distinct
// values are left alone. Integer columns holding only {0,1} come out
// Boolean instead.
func tryNumeric(name string, raw []string, valid []bool, nonMissing int) (Column, bool) {
	unique := make(map[string]struct{}, len(raw))
	for i, s := range raw {
		if valid[i] {
			unique[strings.TrimSpace(s)] = struct{}{}
		}
	}
	if len(unique) > numericCoercionUnique {
		return Column{}, false
	}

	nums := make([]float64, len(raw))
	numValid := make([]bool, len(raw))
	parsed := 0
	zeroOne := nonMissing > 0
	for i, s := range raw {
		if !valid[i] {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			nums[i] = math.NaN()
			continue
		}
		nums[i] = v
		numValid[i] = true
		parsed++
		if v != 0 && v != 1 {
			zeroOne = false
		}
	}

	if nonMissing > 0 && float64(parsed) < numericCoercionKeep*float64(nonMissing) {
		return Column{}, false
	}

	if zeroOne && parsed > 0 {
		bools := make([]bool, len(raw))
		for i := range raw {
			if numValid[i] {
				bools[i] = nums[i] == 1
			}
		}
		return Column{Name: name, Kind: Boolean, bools: bools, valid: numValid}, true
	}

	return Column{Name: name, Kind: Numeric, nums: nums, valid: numValid}, true
}
