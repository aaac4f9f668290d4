package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isati-sh/daycare-sub001/internal/models"
	"github.com/isati-sh/daycare-sub001/internal/service"
	"github.com/isati-sh/daycare-sub001/internal/validation"
)

// ChildHandler serves child records, their emergency contacts and daily logs
type ChildHandler struct {
	enrollment *service.EnrollmentService
	dailyLogs  *service.DailyLogService
}

// NewChildHandler creates a new child handler
func NewChildHandler(enrollment *service.EnrollmentService, dailyLogs *service.DailyLogService) *ChildHandler {
	return &ChildHandler{enrollment: enrollment, dailyLogs: dailyLogs}
}

// optionalString tells an absent key from an explicit null. A null
// decodes as set with an empty value, which clears the field.
type optionalString struct {
	set   bool
	value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = ""
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (o optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// allergyField accepts a comma separated string, an array of strings or
// null (clears the list).
type allergyField struct {
	optionalString
}

func (a *allergyField) UnmarshalJSON(data []byte) error {
	a.set = true
	if string(data) == "null" {
		a.value = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.value = s
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("allergies must be a string or an array of strings")
	}
	a.value = strings.Join(validation.NormalizeAllergyList(list), ",")
	return nil
}

type emergencyContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type createChildRequest struct {
	FirstName         string                    `json:"first_name"`
	LastName          string                    `json:"last_name"`
	DateOfBirth       string                    `json:"date_of_birth"`
	AgeGroup          models.AgeGroup           `json:"age_group"`
	Status            models.ChildStatus        `json:"status"`
	ParentEmail       string                    `json:"parent_email"`
	ParentName        string                    `json:"parent_name"`
	TeacherID         string                    `json:"teacher_id"`
	Allergies         allergyField              `json:"allergies"`
	MedicalNotes      string                    `json:"medical_notes"`
	EmergencyContact  string                    `json:"emergency_contact"`
	EmergencyContacts []emergencyContactRequest `json:"emergency_contacts"`
}

type updateChildRequest struct {
	FirstName        *string             `json:"first_name"`
	LastName         *string             `json:"last_name"`
	DateOfBirth      *string             `json:"date_of_birth"`
	AgeGroup         *models.AgeGroup    `json:"age_group"`
	Status           *models.ChildStatus `json:"status"`
	TeacherID        optionalString      `json:"teacher_id"`
	Allergies        allergyField        `json:"allergies"`
	MedicalNotes     *string             `json:"medical_notes"`
	EmergencyContact *string             `json:"emergency_contact"`
}

type careRequest struct {
	Allergies        allergyField `json:"allergies"`
	MedicalNotes     *string      `json:"medical_notes"`
	EmergencyContact *string      `json:"emergency_contact"`
}

type assignTeacherRequest struct {
	TeacherID string `json:"teacher_id"`
}

type setStatusRequest struct {
	Status models.ChildStatus `json:"status"`
}

type createLogRequest struct {
	LogDate    string `json:"log_date"`
	Mood       string `json:"mood"`
	Meals      string `json:"meals"`
	NapMinutes int    `json:"nap_minutes"`
	Notes      string `json:"notes"`
}

// List returns the children visible to the caller, optionally filtered by
// status and age_group query parameters.
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.ChildFilter{
		Status:   models.ChildStatus(r.URL.Query().Get("status")),
		AgeGroup: models.AgeGroup(r.URL.Query().Get("age_group")),
	}

	children, err := h.enrollment.ListChildren(r.Context(), GetAccountFromContext(r.Context()), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orEmpty(children))
}

// Create enrolls a child
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.EnrollmentInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		AgeGroup:         req.AgeGroup,
		Status:           req.Status,
		ParentEmail:      req.ParentEmail,
		ParentName:       req.ParentName,
		TeacherID:        req.TeacherID,
		Allergies:        req.Allergies.value,
		MedicalNotes:     req.MedicalNotes,
		EmergencyContact: req.EmergencyContact,
	}
	for _, c := range req.EmergencyContacts {
		in.EmergencyContacts = append(in.EmergencyContacts, service.EmergencyContactInput(c))
	}

	child, err := h.enrollment.Create(r.Context(), GetAccountFromContext(r.Context()), in)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}

// Get returns one child
func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, err := h.enrollment.GetChild(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// Update applies a partial update from staff
func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.enrollment.Update(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"), service.ChildUpdate{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		AgeGroup:         req.AgeGroup,
		Status:           req.Status,
		TeacherID:        req.TeacherID.ptr(),
		Allergies:        req.Allergies.ptr(),
		MedicalNotes:     req.MedicalNotes,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// UpdateCare lets a parent change allergies and notes on their own child
func (h *ChildHandler) UpdateCare(w http.ResponseWriter, r *http.Request) {
	var req careRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.enrollment.UpdateCare(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"), service.CareUpdate{
		Allergies:        req.Allergies.ptr(),
		MedicalNotes:     req.MedicalNotes,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// Delete removes a child record
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.enrollment.Delete(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignTeacher sets or clears the teacher of a child
func (h *ChildHandler) AssignTeacher(w http.ResponseWriter, r *http.Request) {
	var req assignTeacherRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.enrollment.AssignTeacher(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"), req.TeacherID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// SetStatus changes the enrollment status of a child
func (h *ChildHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.enrollment.SetStatus(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// ListEmergencyContacts returns the emergency contacts of a child
func (h *ChildHandler) ListEmergencyContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.enrollment.ListEmergencyContacts(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orEmpty(contacts))
}

// ListLogs returns the daily logs of a child, newest first
func (h *ChildHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.dailyLogs.ListLogs(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orEmpty(logs))
}

// CreateLog records a daily log for a child
func (h *ChildHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.dailyLogs.CreateLog(r.Context(), GetAccountFromContext(r.Context()), r.PathValue("id"), service.DailyLogInput(req))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
