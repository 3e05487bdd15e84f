package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rzbill/blocklog/internal/program"
)

// StatusFor maps an error returned by the program to an HTTP status.
func StatusFor(err error) int {
	pe, ok := program.AsError(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	switch pe.Code {
	case program.CodeMissingSigner:
		return http.StatusUnauthorized
	case program.CodePolicyDenied:
		return http.StatusForbidden
	case program.CodeSlotMissing:
		return http.StatusNotFound
	case program.CodeInvalidInstruction:
		return http.StatusBadRequest
	case program.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	switch pe.Kind() {
	case program.KindExhaustion:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusConflict
	}
}
