package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/betting-pool/services"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		description string
	}{
		{"group not found", fmt.Errorf("%w: A", services.ErrGroupNotFound), http.StatusNotFound, "Group not found: A"},
		{"bet not found", services.ErrBetNotFound, http.StatusNotFound, "Bet not found"},
		{"locked", services.ErrLockedBets, http.StatusLocked, "Cannot modify bets because the locking date is exceeded"},
		{"name exists", fmt.Errorf("%w: alice", services.ErrNameAlreadyExists), http.StatusConflict, "Name already exists: alice"},
		{"expired token", services.ErrExpiredToken, http.StatusUnauthorized, "Expired token"},
		{"admin results", services.ErrNoResultsForAdminUser, http.StatusUnauthorized, "No results for admin user"},
		{"invalid team id", services.ErrInvalidTeamID, http.StatusBadRequest, "Invalid team id"},
		{"weak password", services.ErrUnsatisfiedPasswordRequirements, http.StatusBadRequest, "Password does not satisfy requirements"},
		{"no admin", services.ErrNoAdminUser, http.StatusInternalServerError, "No admin user found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			env := decodeError(t, rec)
			if env.OK || env.ErrorCode != tt.status || env.Description != tt.description {
				t.Errorf("envelope = %+v, want error_code %d and description %q", env, tt.status, tt.description)
			}
		})
	}
}

func TestMapValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &services.ValidationError{Path: "/team1/score", Schema: "minimum", Message: "must be greater than or equal to 0"}
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodPatch, "/", nil), fmt.Errorf("modify: %w", err))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	env := decodeError(t, rec)
	if env.Path != "/team1/score" || env.Schema != "minimum" {
		t.Errorf("path/schema = %q/%q", env.Path, env.Schema)
	}
	if env.Description != "Must be greater than or equal to 0" {
		t.Errorf("description = %q", env.Description)
	}
}

func TestUnexpectedErrorHidesDetailsUnlessDebug(t *testing.T) {
	defer SetDebug(false)
	leak := errors.New("pq: connection refused")

	for _, dbg := range []bool{false, true} {
		SetDebug(dbg)
		rec := httptest.NewRecorder()
		mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), leak)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		env := decodeError(t, rec)
		if shown := strings.Contains(env.Description, "connection refused"); shown != dbg {
			t.Errorf("debug=%v: description %q", dbg, env.Description)
		}
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		path   string
		schema string
	}{
		{"valid", `{"team1":{"score":2}}`, "", ""},
		{"unknown field", `{"team3":{}}`, "/team3", "additionalProperties"},
		{"wrong type", `{"team1":{"score":"two"}}`, "/team1/score", "type"},
		{"empty body", ``, "", "json"},
		{"broken json", `{"team1":`, "", "json"},
		{"two values", `{} {}`, "", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input services.ModifyScoreBetInput
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tt.body))

			err := readJSON(rec, req, &input)
			if tt.schema == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if input.Team1 == nil || input.Team1.Score == nil || *input.Team1.Score != 2 {
					t.Errorf("decoded %+v", input)
				}
				return
			}

			var verr *services.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Path != tt.path || verr.Schema != tt.schema {
				t.Errorf("path/schema = %q/%q, want %q/%q", verr.Path, verr.Schema, tt.path, tt.schema)
			}
			if !errors.Is(err, services.ErrValidationFailed) {
				t.Error("validation errors must unwrap to ErrValidationFailed")
			}
		})
	}
}

func TestLangFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"", "fr", true},
		{"?lang=en", "en", true},
		{"?lang=fr", "fr", true},
		{"?lang=de", "", false},
	}
	for _, tt := range tests {
		lang, err := langFromRequest(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
		if (err == nil) != tt.ok || string(lang) != tt.want {
			t.Errorf("%q: got %q, %v", tt.query, lang, err)
		}
	}
}
