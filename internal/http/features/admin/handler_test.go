package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testHandler() *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil)
}

func TestInvite_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "empty body",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "name and email are required",
		},
		{
			name:           "missing email",
			body:           `{"name": "Mei Chen"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "name and email are required",
		},
		{
			name:           "invalid json",
			body:           `{invalid}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
	}

	handler := testHandler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/admin/members/invite", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Invite(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.expectedStatus)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != tt.expectedError {
				t.Errorf("Error = %q, want %q", response["error"], tt.expectedError)
			}
		})
	}
}

func TestUpdateUserStatus_InvalidID(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodPatch, "/v1/admin/users/not-a-uuid/status",
		bytes.NewBufferString(`{"status": "disabled"}`))
	rec := httptest.NewRecorder()

	handler.UpdateUserStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRejectProfile_InvalidID(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/profiles/not-a-uuid/reject",
		bytes.NewBufferString(`{"reason": "incomplete"}`))
	rec := httptest.NewRecorder()

	handler.RejectProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"", 50, 50},
		{"25", 50, 25},
		{"-1", 50, 50},
		{"abc", 50, 50},
	}
	for _, tt := range tests {
		if got := queryInt(tt.in, tt.def); got != tt.want {
			t.Errorf("queryInt(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}
