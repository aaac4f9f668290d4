package models

import "time"

// AgeGroup classifies a child for room placement
type AgeGroup string

const (
	AgeGroupInfant    AgeGroup = "infant"
	AgeGroupToddler   AgeGroup = "toddler"
	AgeGroupPreschool AgeGroup = "preschool"
)

// AgeGroups lists the accepted age groups
var AgeGroups = []AgeGroup{AgeGroupInfant, AgeGroupToddler, AgeGroupPreschool}

// ChildStatus is the enrollment state of a child
type ChildStatus string

const (
	StatusActive   ChildStatus = "active"
	StatusInactive ChildStatus = "inactive"
	StatusWaitlist ChildStatus = "waitlist"
)

// ChildStatuses lists the accepted statuses
var ChildStatuses = []ChildStatus{StatusActive, StatusInactive, StatusWaitlist}

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

// Child is an enrolled (or waitlisted) child. ParentID and TeacherID are weak
// references; the empty string is stored as NULL. A nil Allergies slice is
// stored as NULL.
type Child struct {
	ID               string      `json:"id"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	DateOfBirth      string      `json:"date_of_birth"`
	AgeGroup         AgeGroup    `json:"age_group"`
	Status           ChildStatus `json:"status"`
	ParentID         string      `json:"parent_id,omitempty"`
	TeacherID        string      `json:"teacher_id,omitempty"`
	Allergies        []string    `json:"allergies"`
	MedicalNotes     string      `json:"medical_notes,omitempty"`
	EmergencyContact string      `json:"emergency_contact,omitempty"`
	EnrollmentDate   string      `json:"enrollment_date"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// FullName joins first and last name
func (c *Child) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ChildPatch carries the fields of a partial update. A nil pointer means the
// field was not supplied. For TeacherID a pointer to "" clears the assignment;
// for Allergies a pointer to nil clears the list.
type ChildPatch struct {
	FirstName        *string
	LastName         *string
	DateOfBirth      *string
	AgeGroup         *AgeGroup
	Status           *ChildStatus
	TeacherID        *string
	Allergies        *[]string
	MedicalNotes     *string
	EmergencyContact *string
}

// IsEmpty reports whether no field was supplied
func (p ChildPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.DateOfBirth == nil &&
		p.AgeGroup == nil && p.Status == nil && p.TeacherID == nil &&
		p.Allergies == nil && p.MedicalNotes == nil && p.EmergencyContact == nil
}

// Apply copies the supplied fields onto c
func (p ChildPatch) Apply(c *Child) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.DateOfBirth != nil {
		c.DateOfBirth = *p.DateOfBirth
	}
	if p.AgeGroup != nil {
		c.AgeGroup = *p.AgeGroup
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.TeacherID != nil {
		c.TeacherID = *p.TeacherID
	}
	if p.Allergies != nil {
		c.Allergies = *p.Allergies
	}
	if p.MedicalNotes != nil {
		c.MedicalNotes = *p.MedicalNotes
	}
	if p.EmergencyContact != nil {
		c.EmergencyContact = *p.EmergencyContact
	}
}

// ChildFilter narrows ListChildren. Zero values match everything.
type ChildFilter struct {
	ParentID  string
	TeacherID string
	Status    ChildStatus
	AgeGroup  AgeGroup
}

// EnrollmentSummary is the admin dashboard count view
type EnrollmentSummary struct {
	Total      int                 `json:"total"`
	ByStatus   map[ChildStatus]int `json:"by_status"`
	ByAgeGroup map[AgeGroup]int    `json:"by_age_group"`
	Unassigned int                 `json:"unassigned"`
}
