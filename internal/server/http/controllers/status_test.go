package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rzbill/blocklog/internal/program"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{program.ErrMissingSigner, http.StatusUnauthorized},
		{program.ErrPolicyDenied, http.StatusForbidden},
		{program.ErrSlotMissing, http.StatusNotFound},
		{program.ErrSlotAlreadyExists, http.StatusConflict},
		{program.ErrKeyMismatch, http.StatusConflict},
		{program.ErrLogFull, http.StatusConflict},
		{program.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{program.ErrAddressSpaceExhausted, http.StatusUnprocessableEntity},
		{program.ErrInvalidInstruction, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", program.ErrSlotMissing), http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
