package records

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

func DecodeCase(r io.Reader, now time.Time) (*Case, error) {
	var c Case
	if err := decodeJSON(r, &c); err != nil {
		return nil, err
	}
	if err := NormalizeCase(&c, now); err != nil {
		return nil, err
	}
	return &c, nil
}

func DecodeReport(r io.Reader, now time.Time) (*IncidentReport, error) {
	var rep IncidentReport
	if err := decodeJSON(r, &rep); err != nil {
		return nil, err
	}
	if err := NormalizeReport(&rep, now); err != nil {
		return nil, err
	}
	return &rep, nil
}

func DecodeIndividual(r io.Reader, now time.Time) (*Individual, error) {
	var ind Individual
	if err := decodeJSON(r, &ind); err != nil {
		return nil, err
	}
	if err := NormalizeIndividual(&ind, now); err != nil {
		return nil, err
	}
	return &ind, nil
}

func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Fields: []FieldError{{Field: "body", Message: "request body is empty"}}}
		}
		return decodeError(err)
	}
	return nil
}

// NormalizeCase applies defaults and checks every case invariant in place.
func NormalizeCase(c *Case, now time.Time) error {
	ve := &ValidationError{}
	c.ID = ""
	c.CaseID = strings.TrimSpace(c.CaseID)
	c.CreatedBy = strings.TrimSpace(c.CreatedBy)
	c.Location.Country = strings.TrimSpace(c.Location.Country)
	c.Status = strings.TrimSpace(c.Status)

	if c.CaseID == "" {
		ve.add("case_id", "is required")
	}
	if c.CreatedBy == "" {
		ve.add("created_by", "is required")
	}
	if c.Location.Country == "" {
		ve.add("location.country", "is required")
	}
	if err := c.Location.Coordinates.validate(); err != nil {
		ve.add("location.coordinates", "%s", err.Error())
	}
	if c.Status == "" {
		c.Status = CaseStatusNew
	} else if !IsCaseStatus(c.Status) {
		ve.add("status", "must be one of %s, %s, %s", CaseStatusNew, CaseStatusUnderInvestigation, CaseStatusResolved)
	}
	if c.DateOccurred.IsZero() {
		ve.add("date_occurred", "is required")
	}
	if c.DateReported.IsZero() {
		ve.add("date_reported", "is required")
	}
	if c.ViolationTypes == nil {
		c.ViolationTypes = StringList{}
	}
	if c.Victims == nil {
		c.Victims = []string{}
	}
	if c.Perpetrators == nil {
		c.Perpetrators = []Perpetrator{}
	}
	c.Evidence = normalizeEvidence(c.Evidence, ve)
	c.Stamp(now)
	return ve.orNil()
}

func NormalizeReport(r *IncidentReport, now time.Time) error {
	ve := &ValidationError{}
	r.ID = ""
	r.ReportID = strings.TrimSpace(r.ReportID)
	r.ReporterType = strings.TrimSpace(r.ReporterType)
	loc := &r.IncidentDetails.Location
	loc.Country = strings.TrimSpace(loc.Country)
	loc.City = strings.TrimSpace(loc.City)

	if r.ReportID == "" {
		ve.add("report_id", "is required")
	}
	if r.ReporterType == "" {
		ve.add("reporter_type", "is required")
	}
	if loc.Country == "" {
		ve.add("incident_details.location.country", "is required")
	}
	if loc.City == "" {
		ve.add("incident_details.location.city", "is required")
	}
	if err := loc.Coordinates.validate(); err != nil {
		ve.add("incident_details.location.coordinates", "%s", err.Error())
	}
	if r.IncidentDetails.Date.IsZero() {
		ve.add("incident_details.date", "is required")
	}
	if r.IncidentDetails.ViolationTypes == nil {
		r.IncidentDetails.ViolationTypes = StringList{}
	}
	if strings.TrimSpace(r.Status) == "" {
		r.Status = ReportStatusNew
	}
	r.Evidence = normalizeEvidence(r.Evidence, ve)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = NewTimestamp(now)
	}
	return ve.orNil()
}

func NormalizeIndividual(ind *Individual, now time.Time) error {
	ve := &ValidationError{}
	ind.ID = ""
	ind.Pseudonym = strings.TrimSpace(ind.Pseudonym)
	if ind.Demographics == nil {
		ve.add("demographics", "is required")
	}
	if ind.RiskAssessment == nil {
		ve.add("risk_assessment", "is required")
	}
	if ind.CasesInvolved == nil {
		ind.CasesInvolved = StringList{}
	}
	if ind.CreatedAt.IsZero() {
		ind.CreatedAt = NewTimestamp(now)
	}
	if ind.UpdatedAt.IsZero() {
		ind.UpdatedAt = NewTimestamp(now)
	}
	return ve.orNil()
}

func normalizeEvidence(items []Evidence, ve *ValidationError) []Evidence {
	if items == nil {
		return []Evidence{}
	}
	for i := range items {
		items[i].Type = strings.ToLower(strings.TrimSpace(items[i].Type))
		if !IsEvidenceType(items[i].Type) {
			ve.add(indexedField("evidence", i, "type"), "must be one of %s, %s, %s", EvidencePhoto, EvidenceVideo, EvidenceDocument)
		}
		if items[i].DateCaptured != nil && items[i].DateCaptured.IsZero() {
			items[i].DateCaptured = nil
		}
	}
	return items
}

func indexedField(parent string, i int, field string) string {
	return parent + "[" + strconv.Itoa(i) + "]." + field
}

// Stamp fills created_at and updated_at when they are absent.
func (c *Case) Stamp(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = NewTimestamp(now)
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = NewTimestamp(now)
	}
}

// ValidateCaseStatus checks a status transition target.
func ValidateCaseStatus(status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return &ValidationError{Fields: []FieldError{{Field: "status", Message: "is required"}}}
	}
	if !IsCaseStatus(status) {
		return &ValidationError{Fields: []FieldError{{Field: "status", Message: "must be one of " + CaseStatusNew + ", " + CaseStatusUnderInvestigation + ", " + CaseStatusResolved}}}
	}
	return nil
}
