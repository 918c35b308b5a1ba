// Package storefront is the HTTP client for the storefront REST API.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/pkg/metrics"
)

const (
	loginPath      = "/api/login/"
	registerPath   = "/api/register/"
	profilePath    = "/api/profile/"
	categoriesPath = "/api/categories/"
	productsPath   = "/api/products/"

	maxBodyBytes = 1 << 20
)

// Fallback messages used when a rejection carries no detail.
const (
	LoginFailed      = "Login failed"
	ProfileFailed    = "Could not fetch user profile"
	AddProductFailed = "Failed to add product"
)

// Client talks to the storefront API. It satisfies ports.StorefrontAPI.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient returns a client for baseURL. A timeout <= 0 leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "storefront_client").Logger(),
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.Credential, error) {
	body := map[string]string{"username": username, "password": password}
	status, raw, err := c.do(ctx, http.MethodPost, loginPath, "", body)
	if err != nil {
		return domain.Credential{}, err
	}
	if !gjson.ValidBytes(raw) {
		return domain.Credential{}, malformed(loginPath)
	}
	if !ok(status) {
		return domain.Credential{}, rejection(status, raw, LoginFailed)
	}

	res := gjson.GetManyBytes(raw, "access", "refresh")
	cred, err := domain.NewCredential(res[0].String(), res[1].String())
	if err != nil {
		return domain.Credential{}, &domain.APIError{Status: status, Detail: LoginFailed}
	}
	return cred, nil
}

func (c *Client) Register(ctx context.Context, in domain.RegisterInput) error {
	status, raw, err := c.do(ctx, http.MethodPost, registerPath, "", in)
	if err != nil {
		return err
	}
	if ok(status) {
		return nil
	}
	if !gjson.ValidBytes(raw) {
		return malformed(registerPath)
	}
	return rejection(status, raw, compact(raw))
}

func (c *Client) Profile(ctx context.Context, accessToken string) (domain.Profile, error) {
	status, raw, err := c.do(ctx, http.MethodGet, profilePath, accessToken, nil)
	if err != nil {
		return domain.Profile{}, err
	}
	if !ok(status) {
		return domain.Profile{}, rejection(status, raw, ProfileFailed)
	}

	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: decode profile: %v", domain.ErrTransport, err)
	}
	return p, nil
}

// Categories accepts either a bare array or a paginated {"results": [...]}
// body. Anything else degrades to no categories.
func (c *Client) Categories(ctx context.Context) []domain.Category {
	status, raw, err := c.do(ctx, http.MethodGet, categoriesPath, "", nil)
	if err != nil {
		c.log.Warn().Err(err).Msg("categories unavailable")
		return nil
	}
	if !ok(status) || !gjson.ValidBytes(raw) {
		c.log.Warn().Int("status", status).Msg("categories rejected")
		return nil
	}

	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		list = list.Get("results")
	}
	if !list.IsArray() {
		c.log.Warn().Msg("categories response has no list")
		return nil
	}

	var cats []domain.Category
	list.ForEach(func(_, v gjson.Result) bool {
		cats = append(cats, domain.Category{
			ID:          v.Get("id").Int(),
			Name:        v.Get("name").String(),
			Description: v.Get("description").String(),
		})
		return true
	})
	return cats
}

func (c *Client) CreateProduct(ctx context.Context, accessToken string, in domain.ProductInput) error {
	status, raw, err := c.do(ctx, http.MethodPost, productsPath, accessToken, in)
	if err != nil {
		return err
	}
	if ok(status) {
		return nil
	}
	if !gjson.ValidBytes(raw) {
		return malformed(productsPath)
	}
	return rejection(status, raw, AddProductFailed)
}

// do sends one request. The bearer header is set only for a non-empty token.
// Transport failures wrap domain.ErrTransport.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(path, "error").Inc()
		c.log.Warn().Err(err).Str("request_id", reqID).Str("method", method).Str("path", path).Msg("storefront request failed")
		return 0, nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(path, "error").Inc()
		return 0, nil, fmt.Errorf("%w: read %s: %v", domain.ErrTransport, path, err)
	}

	metrics.APIRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("storefront request")

	return resp.StatusCode, raw, nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

// rejection builds an APIError from the body's detail field, or fallback.
func rejection(status int, raw []byte, fallback string) *domain.APIError {
	if d := gjson.GetBytes(raw, "detail"); d.Type == gjson.String && d.String() != "" {
		return &domain.APIError{Status: status, Detail: d.String()}
	}
	return &domain.APIError{Status: status, Detail: fallback}
}

func malformed(path string) error {
	return fmt.Errorf("%w: %s: response is not JSON", domain.ErrTransport, path)
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}
