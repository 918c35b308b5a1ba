package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{}
	stub.loginFn = func(_ context.Context, username, password string) error {
		if username != "alice" || password != "pw" {
			t.Fatalf("unexpected args: %s %s", username, password)
		}
		stub.outcome = domain.Resolved{Session: domain.Session{
			Identity: 7,
			Role:     domain.RoleClient,
			Profile:  domain.Profile{ID: 7, Username: "alice"},
		}}
		return nil
	}
	h := NewSessionHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/session/login", `{"username":"alice","password":"pw"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "resolved_client" || resp["role"] != "client" || resp["identity"] != float64(7) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["expires_at"]; ok {
		t.Fatalf("expected no expires_at for an opaque token")
	}
}

func TestSessionHandler_Login_Validation(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubSessions{loginFn: func(context.Context, string, string) error {
		t.Fatalf("should not call Login")
		return nil
	}})

	c := e.NewContext(jsonRequest(http.MethodPost, "/session/login", `{"username":"alice"}`), httptest.NewRecorder())
	err := h.Login(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("expected field message, got %q", err.Error())
	}
}

func TestSessionHandler_Login_Rejected(t *testing.T) {
	e := newEcho()
	rejection := &domain.APIError{Status: 401, Detail: "No active account found with the given credentials"}
	h := NewSessionHandler(&stubSessions{loginFn: func(context.Context, string, string) error { return rejection }})

	c := e.NewContext(jsonRequest(http.MethodPost, "/session/login", `{"username":"alice","password":"bad"}`), httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, rejection) {
		t.Fatalf("expected rejection to be returned, got %v", err)
	}
}

func TestSessionHandler_GetAndLogout(t *testing.T) {
	e := newEcho()
	stub := &stubSessions{outcome: domain.ResolutionFailed{Reason: domain.ErrTransport}}
	h := NewSessionHandler(stub)

	rec := httptest.NewRecorder()
	if err := h.Get(e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"status":"resolution_failed"`) || !strings.Contains(rec.Body.String(), `"error":"Network error"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := h.Logout(e.NewContext(httptest.NewRequest(http.MethodPost, "/session/logout", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.logouts != 1 || rec.Code != http.StatusOK {
		t.Fatalf("expected one logout and 200, got %d / %d", stub.logouts, rec.Code)
	}
}

func TestAccountHandler_Register(t *testing.T) {
	e := newEcho()
	stub := &stubAccounts{}
	h := NewAccountHandler(stub)

	body := `{"username":"alice","email":"alice@example.com","password":"pw","password2":"pw","is_staff":true}`
	rec := httptest.NewRecorder()
	if err := h.Register(e.NewContext(jsonRequest(http.MethodPost, "/accounts/register", body), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(stub.registered) != 1 || !stub.registered[0].IsStaff {
		t.Fatalf("expected staff registration forwarded, got %+v", stub.registered)
	}
}

func TestAccountHandler_Register_InvalidEmail(t *testing.T) {
	e := newEcho()
	h := NewAccountHandler(&stubAccounts{})

	body := `{"username":"alice","email":"not-an-email","password":"pw","password2":"pw"}`
	err := h.Register(e.NewContext(jsonRequest(http.MethodPost, "/accounts/register", body), httptest.NewRecorder()))
	if !errors.Is(err, domain.ErrValidation) || !strings.Contains(err.Error(), "email must be a valid email") {
		t.Fatalf("expected email validation error, got %v", err)
	}
}
