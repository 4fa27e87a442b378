package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"testing"
)

// Client is an HTTP client for testing API endpoints. The session cookie set
// by login is kept in its cookie jar.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Validator  *OpenAPIValidator
	t          *testing.T
}

// NewClient creates a test client. Responses are checked against the OpenAPI
// document when validator is not nil.
func NewClient(t *testing.T, baseURL string, validator *OpenAPIValidator) *Client {
	t.Helper()
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Jar: jar},
		Validator:  validator,
		t:          t,
	}
}

// LoginAs authenticates using email and password.
func (c *Client) LoginAs(email, password string) {
	c.t.Helper()

	resp := c.POST("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.t.Fatalf("login failed: status=%d body=%s", resp.StatusCode, body)
	}
}

// Logout drops the session cookie.
func (c *Client) Logout() {
	jar, _ := cookiejar.New(nil)
	c.HTTPClient.Jar = jar
}

// GET performs a GET request.
func (c *Client) GET(path string) *http.Response {
	return c.do(http.MethodGet, path, nil)
}

// POST performs a POST request with JSON body.
func (c *Client) POST(path string, body interface{}) *http.Response {
	return c.do(http.MethodPost, path, body)
}

func (c *Client) do(method, path string, body interface{}) *http.Response {
	c.t.Helper()

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		c.t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}

	if c.Validator != nil {
		c.Validator.ValidateResponse(c.t, req, resp)
	}

	return resp
}

// DecodeData decodes the {"data": ...} envelope of resp into v and closes the body.
func DecodeData(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	envelope := struct {
		Data interface{} `json:"data"`
	}{Data: v}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// DecodeError decodes the error category of resp and closes the body.
func DecodeError(t *testing.T, resp *http.Response) (category, message string) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Error struct {
			Message  string `json:"message"`
			Category string `json:"category"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return envelope.Error.Category, envelope.Error.Message
}

// Close discards the body of resp.
func Close(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// String is a convenience for building JSON bodies with optional fields.
func String(s string) *string {
	return &s
}

// Describe formats a response for failure messages.
func Describe(resp *http.Response) string {
	return fmt.Sprintf("%s %s -> %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)
}
