package query

// valueKind describes how rule values for a field must be coerced before
// they are handed to the database as bind arguments.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
)

type fieldSpec struct {
	column string
	kind   valueKind
}

// fields is the single whitelist shared by the filter and sort builders.
// External name -> physical column on the enrollments/students/courses join.
var fields = map[string]fieldSpec{
	"id":            {column: "e.id", kind: kindInt},
	"student_nim":   {column: "s.nim", kind: kindString},
	"student_name":  {column: "s.name", kind: kindString},
	"course_code":   {column: "c.code", kind: kindString},
	"course_name":   {column: "c.name", kind: kindString},
	"semester":      {column: "e.semester", kind: kindInt},
	"academic_year": {column: "e.academic_year", kind: kindString},
	"status":        {column: "e.status", kind: kindString},
}

// Column resolves an external field name to its physical column.
func Column(field string) (string, bool) {
	spec, ok := fields[field]
	if !ok {
		return "", false
	}
	return spec.column, true
}
