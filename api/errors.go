package api

import (
	"net/http"

	"alarm_gateway/apperror"
)

// StatusMap maps an error kind to the HTTP status returned for it.
// Kinds missing from the map answer 500.
type StatusMap map[apperror.Kind]int

// DefaultStatusMap answers malformed sensor payloads with 500.
func DefaultStatusMap() StatusMap {
	return StatusMap{
		apperror.KindConnection: http.StatusInternalServerError,
		apperror.KindQuery:      http.StatusInternalServerError,
		apperror.KindNotFound:   http.StatusNotFound,
		apperror.KindValidation: http.StatusInternalServerError,
	}
}

// StrictStatusMap answers malformed payloads with 400
func StrictStatusMap() StatusMap {
	m := DefaultStatusMap()
	m[apperror.KindValidation] = http.StatusBadRequest
	return m
}

// Status returns the status for err
func (m StatusMap) Status(err error) int {
	if status, ok := m[apperror.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorBody is the JSON body of every failed request
type ErrorBody struct {
	Erro string `json:"erro"`
}
