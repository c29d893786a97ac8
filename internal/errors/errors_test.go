package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "validation",
			err:            Validation("name is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedMsg:    "name is required",
		},
		{
			name:           "invalid credentials",
			err:            ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
			expectedMsg:    "invalid credentials",
		},
		{
			name:           "owner only",
			err:            ErrProjectOwnerOnly,
			expectedStatus: http.StatusForbidden,
			expectedCode:   "OWNER_ONLY",
		},
		{
			name:           "wrapped not found",
			err:            fmt.Errorf("get project: %w", ErrProjectNotFound),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "PROJECT_NOT_FOUND",
			expectedMsg:    "project not found or access denied",
		},
		{
			name:           "duplicate membership",
			err:            ErrAlreadyMember,
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_MEMBER",
		},
		{
			name:           "bare sentinel",
			err:            ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "unknown error hides details",
			err:            errors.New("dial tcp 10.0.0.1:3306: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
			expectedMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.expectedStatus, httpErr.StatusCode)
			assert.Equal(t, tt.expectedCode, httpErr.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, httpErr.Message)
			}
		})
	}
}

func TestDomainErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrTaskNotFound, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", ErrOwnerMembership), ErrConstraint))
	assert.False(t, errors.Is(ErrTaskNotFound, ErrForbidden))

	resp := MapErrorToHTTP(ErrReportNotFound).ToErrorResponse()
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "REPORT_NOT_FOUND", resp.Code)
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "RATE_LIMITED", CodeForStatus(http.StatusTooManyRequests))
	assert.Equal(t, "UNAUTHENTICATED", CodeForStatus(http.StatusUnauthorized))
	assert.Equal(t, "INTERNAL_ERROR", CodeForStatus(http.StatusBadGateway))
}
