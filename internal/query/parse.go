package query

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/krs-admin-api/internal/models"
)

// Op enumerates the allowed advanced filter operators.
type Op string

// Supported operators.
const (
	OpContains   Op = "contains"
	OpStartsWith Op = "startsWith"
	OpEquals     Op = "equals"
	OpBetween    Op = "between"
	OpIn         Op = "in"
)

// Logic is the combinator applied across advanced filter rules.
type Logic string

// Supported combinators.
const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Rule is one validated advanced filter predicate. Exactly one of the value
// slots is populated depending on Op: Text for contains/startsWith/equals,
// Range for between, Values for in.
type Rule struct {
	Field  string
	Op     Op
	Text   interface{}
	Range  [2]interface{}
	Values []interface{}
}

// Sort is one validated sort key. Dir is either "ASC" or "DESC".
type Sort struct {
	Field string
	Dir   string
}

// ListQuery is the validated shape of one enrollment listing request.
// Zero values on the quick-filter fields mean "not filtered".
type ListQuery struct {
	Page         int
	PageSize     int
	Status       string
	Semester     int
	AcademicYear string
	Search       string
	Rules        []Rule
	Logic        Logic
	Sorts        []Sort
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
	sentinelAll     = "ALL"
)

// Parse normalises raw query parameters into a ListQuery. Malformed or
// out-of-whitelist inputs are dropped silently; the request never fails on
// a bad filter or sort parameter.
func Parse(values url.Values) ListQuery {
	q := ListQuery{
		Page:     1,
		PageSize: defaultPageSize,
		Logic:    LogicAnd,
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 1 {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get("page_size")); err == nil {
		switch {
		case size < 1:
			q.PageSize = 1
		case size > maxPageSize:
			q.PageSize = maxPageSize
		default:
			q.PageSize = size
		}
	}

	if status := strings.ToUpper(strings.TrimSpace(values.Get("status"))); status != "" && status != sentinelAll {
		if models.ValidEnrollmentStatus(status) {
			q.Status = status
		}
	}
	if raw := strings.TrimSpace(values.Get("semester")); raw != "" && strings.ToUpper(raw) != sentinelAll {
		if sem, err := strconv.Atoi(raw); err == nil && models.ValidSemester(sem) {
			q.Semester = sem
		}
	}
	if year := strings.TrimSpace(values.Get("academic_year")); year != "" && strings.ToUpper(year) != sentinelAll {
		if models.AcademicYearPattern.MatchString(year) {
			q.AcademicYear = year
		}
	}

	q.Search = strings.TrimSpace(values.Get("search"))

	if strings.ToUpper(strings.TrimSpace(values.Get("filter_logic"))) == string(LogicOr) {
		q.Logic = LogicOr
	}
	q.Rules = parseFilterRules(values.Get("filters"))

	q.Sorts = parseSortRules(values.Get("sorts"))
	if len(q.Sorts) == 0 {
		q.Sorts = []Sort{fallbackSort(values.Get("sort_by"), values.Get("sort_dir"))}
	}

	return q
}

type rawRule struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

// parseFilterRules decodes the filters JSON payload. An unparseable payload
// drops the whole parameter; individual bad rules are skipped so a mixed
// payload still applies its valid subset.
func parseFilterRules(raw string) []Rule {
	if raw == "" {
		return nil
	}
	var decoded []rawRule
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil
	}
	var rules []Rule
	for _, rr := range decoded {
		if rule, ok := validateRule(rr); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func validateRule(rr rawRule) (Rule, bool) {
	spec, ok := fields[rr.Field]
	if !ok {
		return Rule{}, false
	}
	rule := Rule{Field: rr.Field, Op: Op(rr.Op)}

	switch rule.Op {
	case OpContains, OpStartsWith:
		// Pattern matching only makes sense on text columns; an ILIKE
		// against an integer column fails at the database.
		if spec.kind != kindString {
			return Rule{}, false
		}
		text, ok := rr.Value.(string)
		if !ok || text == "" {
			return Rule{}, false
		}
		rule.Text = text
	case OpEquals:
		value, ok := coerceScalar(rr.Value, spec.kind)
		if !ok {
			return Rule{}, false
		}
		rule.Text = value
	case OpBetween:
		bounds, ok := rr.Value.([]interface{})
		if !ok || len(bounds) != 2 {
			return Rule{}, false
		}
		lo, okLo := coerceScalar(bounds[0], spec.kind)
		hi, okHi := coerceScalar(bounds[1], spec.kind)
		if !okLo || !okHi {
			return Rule{}, false
		}
		rule.Range = [2]interface{}{lo, hi}
	case OpIn:
		items, ok := rr.Value.([]interface{})
		if !ok || len(items) == 0 {
			return Rule{}, false
		}
		values := coerceSet(rr.Field, items, spec.kind)
		if len(values) == 0 {
			return Rule{}, false
		}
		rule.Values = values
	default:
		return Rule{}, false
	}
	return rule, true
}

// coerceScalar converts a decoded JSON value into a bind-safe argument of the
// field's kind. Null, empty, and untypeable values are rejected.
func coerceScalar(v interface{}, kind valueKind) (interface{}, bool) {
	switch value := v.(type) {
	case string:
		if value == "" {
			return nil, false
		}
		if kind == kindInt {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, false
			}
			return n, true
		}
		return value, true
	case float64:
		if kind == kindInt {
			return int64(value), true
		}
		return strconv.FormatFloat(value, 'f', -1, 64), true
	default:
		return nil, false
	}
}

// coerceSet applies the in-operator element rules: semester elements must land
// in {1,2}, status elements are upper-cased and checked against the enum, and
// everything else is coerced to the field's kind. Elements that fail are
// filtered out rather than failing the rule; the caller drops empty sets.
func coerceSet(field string, items []interface{}, kind valueKind) []interface{} {
	var out []interface{}
	for _, item := range items {
		switch field {
		case "semester":
			value, ok := coerceScalar(item, kindInt)
			if !ok {
				continue
			}
			if sem, ok := value.(int64); ok && models.ValidSemester(int(sem)) {
				out = append(out, sem)
			}
		case "status":
			text, ok := item.(string)
			if !ok {
				continue
			}
			status := strings.ToUpper(text)
			if models.ValidEnrollmentStatus(status) {
				out = append(out, status)
			}
		default:
			if value, ok := coerceScalar(item, kind); ok {
				out = append(out, value)
			}
		}
	}
	return out
}

type rawSort struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

func parseSortRules(raw string) []Sort {
	if raw == "" {
		return nil
	}
	var decoded []rawSort
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil
	}
	var sorts []Sort
	for _, rs := range decoded {
		if _, ok := fields[rs.Field]; !ok {
			continue
		}
		dir := "ASC"
		if strings.EqualFold(rs.Dir, "desc") {
			dir = "DESC"
		}
		sorts = append(sorts, Sort{Field: rs.Field, Dir: dir})
	}
	return sorts
}

// fallbackSort mirrors the single-column defaults: id descending unless a
// whitelisted column and an explicit asc are requested.
func fallbackSort(sortBy, sortDir string) Sort {
	field := "id"
	if _, ok := fields[sortBy]; ok {
		field = sortBy
	}
	dir := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		dir = "ASC"
	}
	return Sort{Field: field, Dir: dir}
}
