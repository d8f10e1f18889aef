package store

import (
	"net/url"
	"strings"
)

// ListLimit caps every list query.
const ListLimit = 100

// RecordFilter holds the optional list filters shared by cases and reports.
// Empty fields are not applied.
type RecordFilter struct {
	Status    string
	Country   string
	Violation string
	Limit     int
}

func FilterFromQuery(q url.Values) RecordFilter {
	return RecordFilter{
		Status:    strings.TrimSpace(q.Get("status")),
		Country:   strings.TrimSpace(q.Get("country")),
		Violation: strings.TrimSpace(q.Get("violation")),
	}
}

func (f RecordFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > ListLimit {
		return ListLimit
	}
	return f.Limit
}

// FieldPaths locates the filterable attributes inside a stored document.
type FieldPaths struct {
	Country    []string
	Violations []string
}

var (
	CaseFieldPaths = FieldPaths{
		Country:    []string{"location", "country"},
		Violations: []string{"violation_types"},
	}
	ReportFieldPaths = FieldPaths{
		Country:    []string{"incident_details", "location", "country"},
		Violations: []string{"incident_details", "violation_types"},
	}
)

// whereClause builds a conjunctive predicate over the status column and the
// JSON document column. It returns an empty string when no filter applies.
func (d dialect) whereClause(f RecordFilter, paths FieldPaths) (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.Country != "" {
		clauses = append(clauses, d.jsonText("doc", paths.Country...)+"=?")
		args = append(args, f.Country)
	}
	if f.Violation != "" {
		clauses = append(clauses, d.jsonArrayContains("doc", paths.Violations...))
		args = append(args, f.Violation)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
