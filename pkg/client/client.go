// Package client is a typed HTTP client for the team roster API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is used when ROSTER_API_URL is unset
	DefaultBaseURL = "http://localhost:5000/api"
	// DefaultTimeout bounds every request
	DefaultTimeout = 10 * time.Second
	// PlaceholderImageURL is shown when a profile image cannot be loaded
	PlaceholderImageURL = "https://images.pexels.com/photos/1181345/pexels-photo-1181345.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1"

	maxErrorBody = 64 << 10
)

// Member mirrors the member JSON returned by the API
type Member struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewMember holds the fields of a member submission
type NewMember struct {
	Name  string
	Role  string
	Email string
	Phone string
	Bio   string
}

// Image is the profile image attached to a submission
type Image struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// Client talks to the roster API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for baseURL, falling back to ROSTER_API_URL and then DefaultBaseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("ROSTER_API_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListMembers fetches every member, newest first
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var members []Member
	if err := c.do(ctx, http.MethodGet, "/members", nil, "", &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []Member{}
	}
	return members, nil
}

// GetMember fetches one member by id
func (c *Client) GetMember(ctx context.Context, id string) (*Member, error) {
	var member Member
	if err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(id), nil, "", &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember submits a new member with its profile image as multipart form data
func (c *Client) AddMember(ctx context.Context, m NewMember, image Image) (*Member, error) {
	body, contentType, err := encodeMemberForm(m, image)
	if err != nil {
		return nil, unexpectedError(err)
	}

	var member Member
	if err := c.do(ctx, http.MethodPost, "/members", body, contentType, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// ImageURL returns the URL serving a stored profile image
func (c *Client) ImageURL(filename string) string {
	return c.baseURL + "/uploads/" + url.PathEscape(filename)
}

// ImageAvailable reports whether the stored image answers a HEAD request with 200
func (c *Client) ImageAvailable(ctx context.Context, filename string) bool {
	if filename == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.ImageURL(filename), nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return unexpectedError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, readServerMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return transportError(err)
		}
		return unexpectedError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func readServerMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}

func encodeMemberForm(m NewMember, image Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := []struct{ key, value string }{
		{"name", m.Name},
		{"role", m.Role},
		{"email", m.Email},
		{"phone", m.Phone},
		{"bio", m.Bio},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := writer.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}

	if image.Data != nil {
		contentType := image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profileImage"; filename=%q`, path.Base(image.Filename)))
		h.Set("Content-Type", contentType)
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
