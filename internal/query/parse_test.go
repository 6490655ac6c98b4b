package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	q := Parse(url.Values{})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, LogicAnd, q.Logic)
	assert.Empty(t, q.Status)
	assert.Zero(t, q.Semester)
	assert.Empty(t, q.AcademicYear)
	assert.Empty(t, q.Rules)
	assert.Equal(t, []Sort{{Field: "id", Dir: "DESC"}}, q.Sorts)
}

func TestParsePaginationClamps(t *testing.T) {
	cases := []struct {
		name     string
		page     string
		pageSize string
		wantPage int
		wantSize int
	}{
		{"zero page", "0", "10", 1, 10},
		{"negative page", "-3", "10", 1, 10},
		{"garbage page", "abc", "10", 1, 10},
		{"oversized page size", "2", "500", 2, 100},
		{"zero page size", "1", "0", 1, 1},
		{"garbage page size", "1", "xyz", 1, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Parse(url.Values{"page": {tc.page}, "page_size": {tc.pageSize}})
			assert.Equal(t, tc.wantPage, q.Page)
			assert.Equal(t, tc.wantSize, q.PageSize)
		})
	}
}

func TestParseQuickFilters(t *testing.T) {
	q := Parse(url.Values{
		"status":        {"approved"},
		"semester":      {"2"},
		"academic_year": {"2024/2025"},
		"search":        {"  budi  "},
	})

	assert.Equal(t, "APPROVED", q.Status)
	assert.Equal(t, 2, q.Semester)
	assert.Equal(t, "2024/2025", q.AcademicYear)
	assert.Equal(t, "budi", q.Search)
}

func TestParseQuickFiltersDropInvalid(t *testing.T) {
	q := Parse(url.Values{
		"status":        {"PENDING"},
		"semester":      {"3"},
		"academic_year": {"24/25"},
	})

	assert.Empty(t, q.Status)
	assert.Zero(t, q.Semester)
	assert.Empty(t, q.AcademicYear)
}

func TestParseQuickFiltersAllSentinel(t *testing.T) {
	q := Parse(url.Values{
		"status":        {"ALL"},
		"semester":      {"all"},
		"academic_year": {"ALL"},
	})

	assert.Empty(t, q.Status)
	assert.Zero(t, q.Semester)
	assert.Empty(t, q.AcademicYear)
}

func TestParseFiltersMalformedJSONDropped(t *testing.T) {
	q := Parse(url.Values{"filters": {`{"not":"an array"`}})
	assert.Empty(t, q.Rules)
}

func TestParseFiltersKeepsValidSubset(t *testing.T) {
	payload := `[
		{"field":"student_name","op":"contains","value":"budi"},
		{"field":"gpa","op":"equals","value":"3.5"},
		{"field":"course_code","op":"badop","value":"IF"},
		{"field":"status","op":"in","value":["approved","bogus"]}
	]`
	q := Parse(url.Values{"filters": {payload}})

	require.Len(t, q.Rules, 2)
	assert.Equal(t, Rule{Field: "student_name", Op: OpContains, Text: "budi"}, q.Rules[0])
	assert.Equal(t, "status", q.Rules[1].Field)
	assert.Equal(t, []interface{}{"APPROVED"}, q.Rules[1].Values)
}

func TestParseFiltersSemesterInCoercion(t *testing.T) {
	q := Parse(url.Values{"filters": {`[{"field":"semester","op":"in","value":[1,"2",5,"x"]}]`}})

	require.Len(t, q.Rules, 1)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, q.Rules[0].Values)
}

func TestParseFiltersRejectPatternOpsOnIntFields(t *testing.T) {
	for _, payload := range []string{
		`[{"field":"id","op":"contains","value":"12"}]`,
		`[{"field":"id","op":"startsWith","value":"1"}]`,
		`[{"field":"semester","op":"contains","value":"1"}]`,
	} {
		q := Parse(url.Values{"filters": {payload}})
		assert.Empty(t, q.Rules, payload)
	}

	// Integer fields still accept the value-typed operators.
	q := Parse(url.Values{"filters": {`[{"field":"id","op":"equals","value":12}]`}})
	require.Len(t, q.Rules, 1)
	assert.Equal(t, int64(12), q.Rules[0].Text)
}

func TestParseFiltersBetweenRequiresTwoBounds(t *testing.T) {
	q := Parse(url.Values{"filters": {`[{"field":"id","op":"between","value":[10]}]`}})
	assert.Empty(t, q.Rules)

	q = Parse(url.Values{"filters": {`[{"field":"id","op":"between","value":[10,20]}]`}})
	require.Len(t, q.Rules, 1)
	assert.Equal(t, [2]interface{}{int64(10), int64(20)}, q.Rules[0].Range)
}

func TestParseFilterLogic(t *testing.T) {
	assert.Equal(t, LogicAnd, Parse(url.Values{}).Logic)
	assert.Equal(t, LogicAnd, Parse(url.Values{"filter_logic": {"nonsense"}}).Logic)
	assert.Equal(t, LogicOr, Parse(url.Values{"filter_logic": {"or"}}).Logic)
	assert.Equal(t, LogicOr, Parse(url.Values{"filter_logic": {"OR"}}).Logic)
}

func TestParseSorts(t *testing.T) {
	payload := `[
		{"field":"student_name","dir":"asc"},
		{"field":"gpa","dir":"desc"},
		{"field":"semester","dir":"DESC"}
	]`
	q := Parse(url.Values{"sorts": {payload}})

	assert.Equal(t, []Sort{
		{Field: "student_name", Dir: "ASC"},
		{Field: "semester", Dir: "DESC"},
	}, q.Sorts)
}

func TestParseSortsFallback(t *testing.T) {
	q := Parse(url.Values{"sort_by": {"course_code"}, "sort_dir": {"asc"}})
	assert.Equal(t, []Sort{{Field: "course_code", Dir: "ASC"}}, q.Sorts)

	q = Parse(url.Values{"sort_by": {"drop table"}, "sort_dir": {"sideways"}})
	assert.Equal(t, []Sort{{Field: "id", Dir: "DESC"}}, q.Sorts)
}

func TestParseSortsMalformedJSONFallsBack(t *testing.T) {
	q := Parse(url.Values{"sorts": {`[{"field":`}})
	assert.Equal(t, []Sort{{Field: "id", Dir: "DESC"}}, q.Sorts)
}
