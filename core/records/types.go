package records

const (
	CaseStatusNew                = "new"
	CaseStatusUnderInvestigation = "under_investigation"
	CaseStatusResolved           = "resolved"

	ReportStatusNew = "new"
)

var caseStatuses = map[string]struct{}{
	CaseStatusNew:                {},
	CaseStatusUnderInvestigation: {},
	CaseStatusResolved:           {},
}

func IsCaseStatus(s string) bool {
	_, ok := caseStatuses[s]
	return ok
}

const (
	EvidencePhoto    = "photo"
	EvidenceVideo    = "video"
	EvidenceDocument = "document"
)

var evidenceTypes = map[string]struct{}{
	EvidencePhoto:    {},
	EvidenceVideo:    {},
	EvidenceDocument: {},
}

func IsEvidenceType(s string) bool {
	_, ok := evidenceTypes[s]
	return ok
}

type Location struct {
	Country     string      `json:"country" bson:"country"`
	Region      string      `json:"region,omitempty" bson:"region,omitempty"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
}

type Perpetrator struct {
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
}

type Evidence struct {
	Type         string     `json:"type" bson:"type"`
	URL          string     `json:"url" bson:"url"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	DateCaptured *Timestamp `json:"date_captured,omitempty" bson:"date_captured,omitempty"`
}

// Case is a tracked violation. ID is the store identifier and is never
// persisted inside the document itself.
type Case struct {
	ID             string        `json:"id,omitempty" bson:"-"`
	CaseID         string        `json:"case_id" bson:"case_id"`
	Title          string        `json:"title" bson:"title"`
	Description    string        `json:"description" bson:"description"`
	ViolationTypes StringList    `json:"violation_types" bson:"violation_types"`
	Status         string        `json:"status" bson:"status"`
	Priority       string        `json:"priority,omitempty" bson:"priority,omitempty"`
	Location       Location      `json:"location" bson:"location"`
	DateOccurred   Timestamp     `json:"date_occurred" bson:"date_occurred"`
	DateReported   Timestamp     `json:"date_reported" bson:"date_reported"`
	Victims        []string      `json:"victims" bson:"victims"`
	Perpetrators   []Perpetrator `json:"perpetrators" bson:"perpetrators"`
	Evidence       []Evidence    `json:"evidence" bson:"evidence"`
	CreatedBy      string        `json:"created_by" bson:"created_by"`
	CreatedAt      Timestamp     `json:"created_at" bson:"created_at"`
	UpdatedAt      Timestamp     `json:"updated_at" bson:"updated_at"`
}

type StatusHistoryEntry struct {
	ID        string    `json:"id,omitempty" bson:"-"`
	CaseID    string    `json:"case_id" bson:"case_id"`
	Status    string    `json:"status" bson:"status"`
	ChangedAt Timestamp `json:"changed_at" bson:"changed_at"`
}

type ContactInfo struct {
	Email            string `json:"email,omitempty" bson:"email,omitempty"`
	Phone            string `json:"phone,omitempty" bson:"phone,omitempty"`
	PreferredContact string `json:"preferred_contact,omitempty" bson:"preferred_contact,omitempty"`
}

type IncidentLocation struct {
	Country     string      `json:"country" bson:"country"`
	City        string      `json:"city" bson:"city"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
}

type IncidentDetails struct {
	Date           Timestamp        `json:"date" bson:"date"`
	Location       IncidentLocation `json:"location" bson:"location"`
	Description    string           `json:"description" bson:"description"`
	ViolationTypes StringList       `json:"violation_types" bson:"violation_types"`
}

type IncidentReport struct {
	ID              string          `json:"id,omitempty" bson:"-"`
	ReportID        string          `json:"report_id" bson:"report_id"`
	ReporterType    string          `json:"reporter_type" bson:"reporter_type"`
	Anonymous       bool            `json:"anonymous" bson:"anonymous"`
	ContactInfo     *ContactInfo    `json:"contact_info,omitempty" bson:"contact_info,omitempty"`
	IncidentDetails IncidentDetails `json:"incident_details" bson:"incident_details"`
	Evidence        []Evidence      `json:"evidence" bson:"evidence"`
	Status          string          `json:"status" bson:"status"`
	AssignedTo      string          `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	CreatedAt       Timestamp       `json:"created_at" bson:"created_at"`
	UpdatedAt       Timestamp       `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type Individual struct {
	ID              string           `json:"id,omitempty" bson:"-"`
	Pseudonym       string           `json:"pseudonym,omitempty" bson:"pseudonym,omitempty"`
	Anonymous       bool             `json:"anonymous" bson:"anonymous"`
	Demographics    map[string]any   `json:"demographics" bson:"demographics"`
	ContactInfo     map[string]any   `json:"contact_info,omitempty" bson:"contact_info,omitempty"`
	CasesInvolved   StringList       `json:"cases_involved" bson:"cases_involved"`
	RiskAssessment  map[string]any   `json:"risk_assessment" bson:"risk_assessment"`
	SupportServices []map[string]any `json:"support_services,omitempty" bson:"support_services,omitempty"`
	CreatedAt       Timestamp        `json:"created_at" bson:"created_at"`
	UpdatedAt       Timestamp        `json:"updated_at" bson:"updated_at"`
}
