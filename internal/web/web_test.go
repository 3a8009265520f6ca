package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-api/internal/kv"
	"salon-api/internal/middleware"
	"salon-api/internal/salon"
	"salon-api/internal/session"
	"salon-api/internal/store"
)

var today = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	return newLimitedApp(t, middleware.NewRateLimiter(t.Context(), 100, 100))
}

func newLimitedApp(t *testing.T, rl *middleware.RateLimiter) *fiber.App {
	t.Helper()
	ctx := context.Background()
	m := kv.NewMemory()
	st, err := store.New(ctx, m)
	require.NoError(t, err)
	sessions := session.NewManager(st, m, session.Config{Secret: "test-secret", TTL: time.Hour, MaxAttempts: 3, Lockout: 15 * time.Minute})
	svc := salon.New(st, nil, salon.WithClock(func() time.Time { return today }))
	_, err = svc.EnsureAdmin(ctx, "admin@salon.test", "adminpass", "Admin")
	require.NoError(t, err)
	return NewApp(NewHandler(svc, sessions, rl))
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func registerClient(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	code, out := do(t, app, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Awa Koné","email":"`+email+`","phone":"+229 97 00 00 00","password":"secret1","confirmPassword":"secret1","acceptTerms":true}`)
	require.Equal(t, http.StatusCreated, code, out)
	return out["token"].(string)
}

func login(t *testing.T, app *fiber.App, email, pw string) string {
	t.Helper()
	code, out := do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+pw+`"}`)
	require.Equal(t, http.StatusOK, code, out)
	return out["token"].(string)
}

func TestRoutesRegistered(t *testing.T) {
	app := newApp(t)
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"POST /api/v1/auth/register",
		"GET /api/v1/dashboard",
		"PATCH /api/v1/admin/appointments/:id/status",
		"GET /api/v1/admin/top-clients",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestRegisterErrors(t *testing.T) {
	app := newApp(t)
	registerClient(t, app, "awa@example.com")

	code, _ := do(t, app, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Awa","email":"awa@example.com","phone":"+22997000000","password":"secret1","confirmPassword":"secret1","acceptTerms":true}`)
	assert.Equal(t, http.StatusConflict, code)

	code, out := do(t, app, http.MethodPost, "/api/v1/auth/register", "", `{"name":"Awa"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["message"], "invalid input")

	code, _ = do(t, app, http.MethodPost, "/api/v1/auth/register", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLoginLockout(t *testing.T) {
	app := newApp(t)
	registerClient(t, app, "awa@example.com")

	for i := 0; i < 2; i++ {
		code, _ := do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"awa@example.com","password":"bad"}`)
		assert.Equal(t, http.StatusUnauthorized, code)
	}
	code, _ := do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"awa@example.com","password":"bad"}`)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestAuthRoutesRateLimited(t *testing.T) {
	app := newLimitedApp(t, middleware.NewRateLimiter(t.Context(), 0.001, 3))

	codes := map[int]int{}
	for i := range 10 {
		code, _ := do(t, app, http.MethodPost, "/api/v1/auth/login", "",
			fmt.Sprintf(`{"email":"client%d@example.com","password":"bad"}`, i))
		codes[code]++
	}
	assert.Equal(t, 3, codes[http.StatusUnauthorized])
	assert.Equal(t, 7, codes[http.StatusTooManyRequests])

	code, _ := do(t, app, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Awa","email":"awa@example.com","phone":"+22997000000","password":"secret1","confirmPassword":"secret1","acceptTerms":true}`)
	assert.Equal(t, http.StatusTooManyRequests, code, "register shares the bucket")

	code, _ = do(t, app, http.MethodGet, "/api/v1/catalog", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRegisterWhileEmailLockedOut(t *testing.T) {
	app := newApp(t)
	for range 3 {
		do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"awa@example.com","password":"guess"}`)
	}

	tok := registerClient(t, app, "awa@example.com")
	code, _ := do(t, app, http.MethodGet, "/api/v1/profile", tok, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestNewsletter(t *testing.T) {
	app := newApp(t)
	admin := login(t, app, "admin@salon.test", "adminpass")

	code, out := do(t, app, http.MethodPost, "/api/v1/newsletter", "", `{"email":"Awa@Example.com"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, out["new"])

	code, out = do(t, app, http.MethodPost, "/api/v1/newsletter", "", `{"email":"awa@example.com"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["new"])

	code, _ = do(t, app, http.MethodPost, "/api/v1/newsletter", "", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = do(t, app, http.MethodGet, "/api/v1/admin/newsletter", admin, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"awa@example.com"}, out["subscribers"])
}

func TestBookingFlow(t *testing.T) {
	app := newApp(t)

	code, _ := do(t, app, http.MethodPost, "/api/v1/appointments", "",
		`{"service":"massage","date":"2026-03-20","name":"Invitée","phone":"+229 01 23 45 67"}`)
	assert.Equal(t, http.StatusCreated, code)

	tok := registerClient(t, app, "awa@example.com")
	code, out := do(t, app, http.MethodPost, "/api/v1/appointments", tok, `{"service":"onglerie","date":"2026-03-14"}`)
	require.Equal(t, http.StatusCreated, code)
	id := out["appointment"].(map[string]any)["id"].(string)

	code, _ = do(t, app, http.MethodPost, "/api/v1/appointments", "bogus", `{"service":"onglerie","date":"2026-03-14"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, dash := do(t, app, http.MethodGet, "/api/v1/dashboard", tok, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(10), dash["points"])
	assert.Len(t, dash["upcoming"], 1)

	code, _ = do(t, app, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", tok, "")
	assert.Equal(t, http.StatusOK, code)
	code, hist := do(t, app, http.MethodGet, "/api/v1/appointments/history?filter=cancelled", tok, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, hist["appointments"], 1)

	code, _ = do(t, app, http.MethodPost, "/api/v1/appointments/missing/cancel", tok, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProtectedAndAdmin(t *testing.T) {
	app := newApp(t)
	code, _ := do(t, app, http.MethodGet, "/api/v1/dashboard", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	tok := registerClient(t, app, "awa@example.com")
	code, _ = do(t, app, http.MethodGet, "/api/v1/admin/appointments", tok, "")
	assert.Equal(t, http.StatusForbidden, code)

	admin := login(t, app, "admin@salon.test", "adminpass")
	code, out := do(t, app, http.MethodGet, "/api/v1/admin/top-clients?limit=5", admin, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, out["clients"], 2)
}

func TestTestimonialModeration(t *testing.T) {
	app := newApp(t)
	tok := registerClient(t, app, "awa@example.com")
	admin := login(t, app, "admin@salon.test", "adminpass")

	code, out := do(t, app, http.MethodPost, "/api/v1/testimonials", tok, `{"rating":5,"text":"Un accueil vraiment chaleureux"}`)
	require.Equal(t, http.StatusCreated, code)
	id := out["testimonial"].(map[string]any)["id"].(string)

	code, _ = do(t, app, http.MethodPost, "/api/v1/testimonials", tok, `{"rating":5,"text":"court"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, pub := do(t, app, http.MethodGet, "/api/v1/testimonials", "", "")
	assert.Empty(t, pub["testimonials"])

	code, _ = do(t, app, http.MethodPost, "/api/v1/admin/testimonials/"+id+"/approve", admin, "")
	assert.Equal(t, http.StatusOK, code)
	_, pub = do(t, app, http.MethodGet, "/api/v1/testimonials", "", "")
	assert.Len(t, pub["testimonials"], 1)
}

func TestAdminStatusAndProfile(t *testing.T) {
	app := newApp(t)
	tok := registerClient(t, app, "awa@example.com")
	admin := login(t, app, "admin@salon.test", "adminpass")
	_, out := do(t, app, http.MethodPost, "/api/v1/appointments", tok, `{"service":"massage","date":"2026-03-22"}`)
	id := out["appointment"].(map[string]any)["id"].(string)

	code, _ := do(t, app, http.MethodPatch, "/api/v1/admin/appointments/"+id+"/status", admin, `{"status":"later"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, app, http.MethodPatch, "/api/v1/admin/appointments/"+id+"/status", admin, `{"status":"completed"}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", tok, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, prof := do(t, app, http.MethodPatch, "/api/v1/profile", tok, `{"phone":"+229 96 11 22 33"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "+229 96 11 22 33", prof["user"].(map[string]any)["phone"])

	code, _ = do(t, app, http.MethodPost, "/api/v1/auth/logout", tok, "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, app, http.MethodGet, "/api/v1/profile", tok, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
