// Package librelink implements the LibreLinkUp share API: login with
// regional-redirect resolution, the connections list, and per-patient graph
// data. One Client maintains exactly one authenticated session.
package librelink

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrcode/librelink-follower/internal/apilog"
	"github.com/mrcode/librelink-follower/internal/models"
)

const (
	productHeader = "llu.android"
	versionHeader = "4.16.0"
	userAgent     = "librelink-follower/1.0"
)

// Client handles communication with the LibreLinkUp API.
type Client struct {
	httpClient *http.Client
	diag       *apilog.Logger
	logger     *zap.Logger
	regionURL  func(region string) string

	mu        sync.RWMutex
	baseURL   string
	authToken string
	accountID string
}

// NewClient creates a client against the given base endpoint. diag may be
// nil to disable the diagnostic traffic log.
func NewClient(baseURL string, diag *apilog.Logger, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		diag:      diag,
		logger:    logger,
		regionURL: regionalURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the endpoint currently in use. After a regional redirect
// this is the regional endpoint, permanently for this session.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetAuthToken installs the bearer token for subsequent requests, replacing
// any previous one.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// Authenticated reports whether a token is installed.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken != ""
}

// hashAccountID derives the Account-Id header value: the lowercase hex
// SHA-256 digest of the provider user id.
func hashAccountID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// setDefaultHeaders applies the static header set the provider requires on
// every request.
func setDefaultHeaders(req *http.Request) {
	req.Header.Set("product", productHeader)
	req.Header.Set("version", versionHeader)
	req.Header.Set("cache-control", "no-cache")
	req.Header.Set("connection", "keep-alive")
	req.Header.Set("timezone", time.Local.String())
	req.Header.Set("accept", "application/json")
	req.Header.Set("accept-language", "en-US")
	req.Header.Set("user-agent", userAgent)
}

// headerLines flattens headers for the diagnostic log.
func headerLines(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(h))
	for _, k := range keys {
		for _, v := range h[k] {
			lines = append(lines, k+": "+v)
		}
	}
	return lines
}

// do executes a request, records the exchange in the diagnostic log and
// returns status code plus body. Transport failures come back as
// NetworkError; the diagnostic log itself can never fail the call.
func (c *Client) do(req *http.Request, reqBody string) (int, []byte, error) {
	callID := apilog.NewCallID()
	c.diag.LogRequest(callID, req.Method, req.URL.String(), headerLines(req.Header), reqBody)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.diag.LogError(fmt.Sprintf("%s %s failed", req.Method, req.URL), err)
		return 0, nil, &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.diag.LogError("reading response body", err)
		return 0, nil, &NetworkError{Err: err}
	}

	c.diag.LogResponse(callID, resp.StatusCode, http.StatusText(resp.StatusCode), headerLines(resp.Header), string(body))
	return resp.StatusCode, body, nil
}

// doLogin posts credentials to one login URL and parses the envelope.
func (c *Client) doLogin(ctx context.Context, loginURL string, payload []byte) (*loginResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	setDefaultHeaders(req)
	req.Header.Set("content-type", "application/json")

	status, body, err := c.do(req, string(payload))
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Body: string(body)}
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ProtocolError{Reason: "parsing login response", Err: err}
	}
	return &parsed, nil
}

// Login authenticates against the provider. When the response signals a
// regional redirect the identical request is re-issued once against the
// regional endpoint, which then permanently becomes this client's base URL.
// On success the bearer token and derived account id are installed for all
// subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	base := c.BaseURL()
	resp, err := c.doLogin(ctx, base+"/llu/auth/login", payload)
	if err != nil {
		c.logger.Warn("login failed", zap.String("url", base), zap.Error(err))
		return nil, err
	}
	if resp.Status != 0 {
		return nil, &LoginError{Status: resp.Status}
	}

	result := &LoginResult{}

	if resp.Data != nil && resp.Data.Redirect && resp.Data.Region != "" {
		region := resp.Data.Region
		regional := c.regionURL(region)
		c.logger.Info("regional redirect", zap.String("region", region), zap.String("url", regional))

		retry, err := c.doLogin(ctx, regional+"/llu/auth/login", payload)
		if err != nil {
			// A failure on the retried request is fatal for this attempt.
			return nil, fmt.Errorf("regional server (%s): %w", region, err)
		}
		if retry.Status != 0 {
			return nil, &LoginError{Status: retry.Status, Region: region}
		}

		c.mu.Lock()
		c.baseURL = regional
		c.mu.Unlock()

		resp = retry
		result.Redirected = true
		result.Region = region
	}

	if resp.Data == nil || resp.Data.AuthTicket == nil || resp.Data.AuthTicket.Token == "" {
		return nil, &ProtocolError{Reason: "login response did not contain an authentication token"}
	}
	if resp.Data.User == nil || resp.Data.User.ID == "" {
		return nil, &ProtocolError{Reason: "login response did not contain a user id"}
	}

	result.UserID = resp.Data.User.ID
	result.Token = resp.Data.AuthTicket.Token
	result.Expiry = resp.Data.AuthTicket.ExpiryTime()

	c.mu.Lock()
	c.authToken = result.Token
	c.accountID = hashAccountID(result.UserID)
	c.mu.Unlock()

	c.logger.Info("login succeeded",
		zap.String("base_url", c.BaseURL()),
		zap.Time("token_expiry", result.Expiry))
	return result, nil
}

// getJSON performs an authenticated GET. It fails fast with
// ErrNotAuthenticated before any network I/O when no token is installed.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	c.mu.RLock()
	base, token, accountID := c.baseURL, c.authToken, c.accountID
	c.mu.RUnlock()

	if token == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return err
	}
	setDefaultHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)
	if accountID != "" {
		req.Header.Set("Account-Id", accountID)
	}

	status, body, err := c.do(req, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ProtocolError{Reason: "parsing " + path + " response", Err: err}
	}
	return nil
}

// GetConnections returns the account's patient connections. An empty list is
// a valid outcome, distinct from transport or parse errors; the caller
// treats the first entry as the active patient.
func (c *Client) GetConnections(ctx context.Context) ([]models.Connection, error) {
	var resp connectionsResponse
	if err := c.getJSON(ctx, "/llu/connections", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetGraphData returns the latest measurement and the server-side recent
// history window for one patient. Trimming to the display cap is the
// caller's concern.
func (c *Client) GetGraphData(ctx context.Context, patientID string) (*GraphData, error) {
	var resp graphResponse
	if err := c.getJSON(ctx, "/llu/connections/"+patientID+"/graph", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &ProtocolError{Reason: "graph response did not contain data"}
	}
	return resp.Data, nil
}
