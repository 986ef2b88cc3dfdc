package main

import (
	"errors"
	"log"
	"net/http"
)

// apiError is the error kind every task and auth operation fails with.
// The status field drives the HTTP mapping in the handlers.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &apiError{status: http.StatusBadRequest, msg: msg}
}

func authenticationError(msg string) error {
	return &apiError{status: http.StatusUnauthorized, msg: msg}
}

func authorizationError(msg string) error {
	return &apiError{status: http.StatusForbidden, msg: msg}
}

func notFoundError(msg string) error {
	return &apiError{status: http.StatusNotFound, msg: msg}
}

func conflictError(msg string) error {
	return &apiError{status: http.StatusConflict, msg: msg}
}

// writeOperationError maps an operation failure onto the response.
// Anything that is not an apiError is a storage or encoding fault and
// surfaces as a sanitized 500 after logging the real cause.
func writeOperationError(w http.ResponseWriter, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr, apiErr.status)
		return
	}
	log.Println(err)
	writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
}
