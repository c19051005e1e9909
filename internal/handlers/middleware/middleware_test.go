package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"resorthub/internal/apperror"
	"resorthub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]models.Principal

func (s stubSessions) Resolve(_ context.Context, token string) (models.Principal, error) {
	principal, ok := s[token]
	if !ok {
		return models.Principal{}, apperror.ErrSessionExpired
	}
	return principal, nil
}

func newTestApp(sessions stubSessions) *fiber.App {
	m := New(sessions, nil)
	app := fiber.New()
	app.Use(m.TraceID())
	app.Use(m.Metrics())

	protected := app.Group("/private", m.RequireAuth())
	protected.Get("/me", func(c *fiber.Ctx) error {
		principal, _ := GetPrincipal(c)
		return c.JSON(fiber.Map{"kind": principal.Kind, "traceId": GetTraceID(c)})
	})
	protected.Get("/admin", m.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	owner := models.NewPrincipal(models.PrincipalOwner, uuid.New())
	admin := models.NewPrincipal(models.PrincipalAdmin, uuid.New())
	app := newTestApp(stubSessions{"owner-token": owner, "admin-token": admin})

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "no header", path: "/private/me", wantStatus: http.StatusUnauthorized, wantCode: "invalid_credentials"},
		{name: "not bearer", path: "/private/me", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired session", path: "/private/me", header: "Bearer stale", wantStatus: http.StatusUnauthorized},
		{name: "valid owner", path: "/private/me", header: "Bearer owner-token", wantStatus: http.StatusOK},
		{name: "owner on admin route", path: "/private/admin", header: "Bearer owner-token", wantStatus: http.StatusForbidden},
		{name: "admin on admin route", path: "/private/admin", header: "bearer admin-token", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body["code"])
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestTraceID_EchoesCallerHeader(t *testing.T) {
	owner := models.NewPrincipal(models.PrincipalOwner, uuid.New())
	app := newTestApp(stubSessions{"owner-token": owner})

	req := httptest.NewRequest(http.MethodGet, "/private/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer owner-token")
	req.Header.Set(TraceIDHeader, "trace-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-123", resp.Header.Get(TraceIDHeader))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "trace-123", body["traceId"])
	assert.Equal(t, string(models.PrincipalOwner), body["kind"])

	req = httptest.NewRequest(http.MethodGet, "/private/me", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(TraceIDHeader))
}
