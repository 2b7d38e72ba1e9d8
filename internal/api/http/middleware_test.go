package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	app := fiber.New()
	metrics := observability.NewMetrics()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	return app, metrics
}

func TestErrorKindStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "validation maps to 400", err: errorutil.NewValidation("firstName must be between 2 and 50 characters"), wantStatus: 400, wantKind: "VALIDATION"},
		{name: "auth maps to 401", err: errorutil.NewAuth("Invalid credentials"), wantStatus: 401, wantKind: "AUTH"},
		{name: "database maps to 500", err: errorutil.NewDatabase("store down", errors.New("dial refused")), wantStatus: 500, wantKind: "DATABASE"},
		{name: "untagged maps to 500", err: errors.New("surprise"), wantStatus: 500, wantKind: "DATABASE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			app.Get("/boom", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body struct {
				Error struct {
					Kind    string `json:"kind"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Error.Kind)
			require.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestDatabaseErrorsHideDetail(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errorutil.NewDatabase("storage operation failed", errors.New("dial tcp 10.0.0.5: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// infrastructure detail never reaches the caller
	assert.Equal(t, "internal server error", body.Error.Message)
}

func TestPanicRecovery(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 500, resp.StatusCode)
}

func TestRequestIDHeaderSet(t *testing.T) {
	app, _ := newTestApp(t)
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(observability.RequestIDHeader))
}
