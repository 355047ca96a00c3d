package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderError(t *testing.T, err error) (int, ierr.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(err)
	})

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	var body ierr.ErrorResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return res.Code, body
}

func TestErrorHandlerDisplayMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		display string
	}{
		{
			name: "role gate keeps its hint",
			err: ierr.NewError("admin role required").
				WithHint("You do not have access to this page").
				Mark(ierr.ErrPermissionDenied),
			status:  http.StatusForbidden,
			display: "You do not have access to this page",
		},
		{
			name: "gateway rejected credentials",
			err: ierr.NewError("status 403").
				WithHint("Gateway returned status 403").
				Mark(ierr.ErrUnauthorized),
			status:  http.StatusUnauthorized,
			display: ierr.ReauthenticateHint,
		},
		{
			name: "token exchange rejected",
			err: ierr.WithError(
				ierr.NewError("status 401").Mark(ierr.ErrUnauthorized),
			).WithHint("Could not authorize with the payment gateway").Mark(ierr.ErrAuthorization),
			status:  http.StatusUnauthorized,
			display: ierr.ReauthenticateHint,
		},
		{
			name:    "missing session",
			err:     ierr.NewError("no bearer token").Mark(ierr.ErrUnauthenticated),
			status:  http.StatusUnauthorized,
			display: ierr.ReauthenticateHint,
		},
		{
			name: "validation hint",
			err: ierr.NewError("name empty").
				WithHint("Name is required").
				Mark(ierr.ErrValidation),
			status:  http.StatusBadRequest,
			display: "Name is required",
		},
		{
			name:    "no hint",
			err:     ierr.NewError("boom").Mark(ierr.ErrSystem),
			status:  http.StatusInternalServerError,
			display: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := renderError(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.display, body.Error.Display)
		})
	}
}
