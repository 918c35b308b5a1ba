package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

type fakeSessions struct {
	dash      domain.Dashboard
	loginErr  error
	streamErr error
}

func (f *fakeSessions) Login(context.Context, string, string) error { return f.loginErr }
func (f *fakeSessions) Logout(context.Context) error                { return nil }
func (f *fakeSessions) Sync(context.Context) error                  { return nil }
func (f *fakeSessions) Outcome() domain.SessionOutcome              { return domain.Unauthenticated{} }
func (f *fakeSessions) Dashboard() domain.Dashboard                 { return f.dash }

func (f *fakeSessions) Notifications() ([]domain.NotificationEvent, error) {
	if f.dash.View != domain.ViewClient {
		return nil, domain.ErrForbiddenView
	}
	return []domain.NotificationEvent{}, nil
}

func (f *fakeSessions) SubscribeNotifications(context.Context) (<-chan domain.NotificationEvent, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return nil, domain.ErrForbiddenView
}

type fakeCatalog struct{ addErr error }

func (f fakeCatalog) CategoryOptions(context.Context) []domain.Option {
	return []domain.Option{domain.CategoryPlaceholder}
}
func (f fakeCatalog) AddProduct(context.Context, domain.ProductInput) error { return f.addErr }

type fakeAccounts struct{}

func (fakeAccounts) Register(context.Context, domain.RegisterInput) error { return nil }

func newTestRouter(sessions *fakeSessions, catalog ports.CatalogService) *echo.Echo {
	return NewRouter(Dependencies{
		Sessions: sessions,
		Catalog:  catalog,
		Accounts: fakeAccounts{},
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error envelope %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestRouter_ViewGating(t *testing.T) {
	cases := []struct {
		name string
		view domain.DashboardView
		path string
		want int
	}{
		{"anonymous notifications", domain.ViewUnauthenticated, "/notifications", http.StatusUnauthorized},
		{"admin notifications", domain.ViewAdmin, "/notifications", http.StatusForbidden},
		{"client notifications", domain.ViewClient, "/notifications", http.StatusOK},
		{"client catalog", domain.ViewClient, "/catalog/categories", http.StatusForbidden},
		{"admin catalog", domain.ViewAdmin, "/catalog/categories", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestRouter(&fakeSessions{dash: domain.Dashboard{View: tc.view, Identity: 7}}, fakeCatalog{})
			rec := serve(e, http.MethodGet, tc.path, "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_LoginErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"rejected", &domain.APIError{Status: 401, Detail: "No active account found with the given credentials"}, http.StatusUnauthorized, "No active account found with the given credentials"},
		{"fallback", &domain.APIError{Status: 400, Detail: "Login failed"}, http.StatusBadRequest, "Login failed"},
		{"upstream 500", &domain.APIError{Status: 500, Detail: "Login failed"}, http.StatusBadGateway, "Login failed"},
		{"network", domain.ErrTransport, http.StatusBadGateway, "Network error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestRouter(&fakeSessions{loginErr: tc.err}, fakeCatalog{})
			rec := serve(e, http.MethodPost, "/session/login", `{"username":"alice","password":"pw"}`)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if got := errorBody(t, rec); got != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, got)
			}
		})
	}
}

func TestRouter_ValidationError(t *testing.T) {
	e := newTestRouter(&fakeSessions{dash: domain.Dashboard{View: domain.ViewAdmin, Identity: 1}}, fakeCatalog{})
	rec := serve(e, http.MethodPost, "/catalog/products", `{"name":"Lamp"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); !strings.Contains(msg, "price is required") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRouter_AddProductRejectionSurfacesDetail(t *testing.T) {
	catalog := fakeCatalog{addErr: &domain.APIError{Status: 401, Detail: "Authentication credentials were not provided."}}
	e := newTestRouter(&fakeSessions{dash: domain.Dashboard{View: domain.ViewAdmin, Identity: 1}}, catalog)

	rec := serve(e, http.MethodPost, "/catalog/products", `{"name":"Lamp","price":"1","stock":"1","category_id":"1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "Authentication credentials were not provided." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRouter_StreamAfterPushDrop(t *testing.T) {
	sessions := &fakeSessions{
		dash:      domain.Dashboard{View: domain.ViewClient, Identity: 7},
		streamErr: domain.ErrChannelClosed,
	}
	e := newTestRouter(sessions, fakeCatalog{})

	rec := serve(e, http.MethodGet, "/notifications/stream", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "notification channel closed" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRouter_Tooling(t *testing.T) {
	e := newTestRouter(&fakeSessions{}, fakeCatalog{})

	for _, path := range []string{"/health", "/health/ready", "/metrics", "/dashboard", "/session"} {
		if rec := serve(e, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
	if rec := serve(e, http.MethodGet, "/swagger/doc.json", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/session/login") {
		t.Fatalf("expected swagger document, got %d", rec.Code)
	}
}
