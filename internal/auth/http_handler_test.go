package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"minilibrary/internal/testutil"
)

func TestHTTPHandler_Login(t *testing.T) {
	handler := NewHTTPHandler(NewService(testutil.TestSecret, time.Hour, newStubUsers(t), nil))

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       map[string]string{"email": "lib@example.com", "password": "correct-horse1"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad credentials",
			body:       map[string]string{"email": "lib@example.com", "password": "wrong"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "missing password",
			body:       map[string]string{"email": "lib@example.com"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed body",
			body:       "{",
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, testutil.NewRequest(http.MethodPost, "/v1/auth/login", tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
			env := testutil.DecodeEnvelope(t, w, nil)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Error.Code)
			} else {
				assert.Contains(t, string(env.Data), "access_token")
			}
		})
	}
}
