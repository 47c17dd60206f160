package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"id": "1"}, "created")

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Status != http.StatusCreated || env.Message != "created" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestError_KnownKind(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperrors.Forbidden("you are not allowed to perform this action"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Data != nil {
		t.Errorf("error envelope data = %v, want null", env.Data)
	}
	if env.Message != "you are not allowed to perform this action" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestError_MasksInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("mongo: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Message != "internal server error" {
		t.Errorf("internal detail leaked: %q", env.Message)
	}
}
