package query

import (
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike neutralises LIKE wildcard metacharacters so user input only ever
// matches literally inside a pattern.
func EscapeLike(raw string) string {
	return likeEscaper.Replace(raw)
}

// BuildWhere renders the predicate for a ListQuery as a WHERE fragment with
// positional bind arguments. The fragment carries its leading " WHERE " and is
// empty when nothing filters.
func BuildWhere(q ListQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, q.Status)
	}
	if q.Semester != 0 {
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)+1))
		args = append(args, q.Semester)
	}
	if q.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("e.academic_year = $%d", len(args)+1))
		args = append(args, q.AcademicYear)
	}

	if q.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(s.nim ILIKE $%d OR s.name ILIKE $%d OR c.code ILIKE $%d)", n, n, n))
		args = append(args, "%"+EscapeLike(q.Search)+"%")
	}

	if group, groupArgs := buildRuleGroup(q.Rules, q.Logic, len(args)); group != "" {
		conditions = append(conditions, group)
		args = append(args, groupArgs...)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildRuleGroup combines the validated advanced rules with the chosen logic.
// The group is parenthesised so OR rules never leak past the quick filters.
func buildRuleGroup(rules []Rule, logic Logic, argOffset int) (string, []interface{}) {
	if len(rules) == 0 {
		return "", nil
	}
	var predicates []string
	var args []interface{}
	for _, rule := range rules {
		pred, ruleArgs := buildRule(rule, argOffset+len(args))
		predicates = append(predicates, pred)
		args = append(args, ruleArgs...)
	}
	joiner := " AND "
	if logic == LogicOr {
		joiner = " OR "
	}
	return "(" + strings.Join(predicates, joiner) + ")", args
}

func buildRule(rule Rule, argOffset int) (string, []interface{}) {
	column, _ := Column(rule.Field)
	switch rule.Op {
	case OpContains:
		return fmt.Sprintf("%s ILIKE $%d", column, argOffset+1),
			[]interface{}{"%" + EscapeLike(rule.Text.(string)) + "%"}
	case OpStartsWith:
		return fmt.Sprintf("%s ILIKE $%d", column, argOffset+1),
			[]interface{}{EscapeLike(rule.Text.(string)) + "%"}
	case OpEquals:
		return fmt.Sprintf("%s = $%d", column, argOffset+1), []interface{}{rule.Text}
	case OpBetween:
		return fmt.Sprintf("%s BETWEEN $%d AND $%d", column, argOffset+1, argOffset+2),
			[]interface{}{rule.Range[0], rule.Range[1]}
	case OpIn:
		placeholders := make([]string, len(rule.Values))
		for i := range rule.Values {
			placeholders[i] = fmt.Sprintf("$%d", argOffset+i+1)
		}
		return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")), rule.Values
	}
	return "1=1", nil
}

// BuildOrderBy renders the sort keys in order and appends the e.id DESC
// tie-break exactly once, skipping it when id is already a chosen key.
func BuildOrderBy(q ListQuery) string {
	var keys []string
	idSorted := false
	for _, sort := range q.Sorts {
		column, ok := Column(sort.Field)
		if !ok {
			continue
		}
		if sort.Field == "id" {
			idSorted = true
		}
		keys = append(keys, column+" "+sort.Dir)
	}
	if len(keys) == 0 {
		return "ORDER BY e.id DESC"
	}
	if !idSorted {
		keys = append(keys, "e.id DESC")
	}
	return "ORDER BY " + strings.Join(keys, ", ")
}
