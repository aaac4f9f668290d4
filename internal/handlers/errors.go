package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/logger"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Checked in order. Storage failures come before ResourceAlreadyExists so a
// lost unique-email race is reported as a storage failure.
var errorMappings = []errorMapping{
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{apperrors.ErrAccountDisabled, http.StatusUnauthorized, "account_disabled"},
	{apperrors.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{apperrors.ErrStorageFailure, http.StatusInternalServerError, "storage_failure"},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, "already_exists"},
	{apperrors.ErrMissingParentName, http.StatusBadRequest, "missing_parent_name"},
	{apperrors.ErrInvalidTeacher, http.StatusBadRequest, "invalid_teacher"},
	{apperrors.ErrMissingName, http.StatusBadRequest, "missing_name"},
	{apperrors.ErrInvalidDateFormat, http.StatusBadRequest, "invalid_date_format"},
	{apperrors.ErrFutureDateOfBirth, http.StatusBadRequest, "future_date_of_birth"},
	{apperrors.ErrInvalidAgeGroup, http.StatusBadRequest, "invalid_age_group"},
	{apperrors.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{apperrors.ErrFutureLogDate, http.StatusBadRequest, "future_log_date"},
	{apperrors.ErrInvalidNapMinutes, http.StatusBadRequest, "invalid_nap_minutes"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
	{apperrors.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
	{apperrors.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
}

// statusFor maps an error to its HTTP status and error code
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondWithError writes a JSON error body. userMsg is what the client sees;
// err, when set, is logged with logMsg.
func respondWithError(w http.ResponseWriter, status int, code, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", status).Msg(logMsg)
		} else {
			logger.Debug().Err(err).Int("status", status).Msg(logMsg)
		}
	}

	respondJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: userMsg}})
}

// respondWithAppError maps a service error to a status and writes it. Field
// errors keep their message and field; server errors never leak the cause.
func respondWithAppError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)

	detail := errorDetail{Code: code, Message: err.Error()}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		detail.Message = ce.Error()
		detail.Field = ce.Field
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("code", code).Msg("request failed")
		detail.Message = http.StatusText(status)
		if code == "storage_failure" {
			detail.Message = apperrors.ErrStorageFailure.Error()
		}
	case status == http.StatusUnauthorized:
		// the cause of a bad token stays in the logs
		logger.Debug().Err(err).Msg("authentication failed")
		for _, m := range errorMappings {
			if m.code == code {
				detail.Message = m.err.Error()
				break
			}
		}
	}

	respondJSON(w, status, errorResponse{Error: detail})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_body", ErrInvalidBody, "failed to decode request body", err)
		return false
	}
	return true
}
