// HTTP client for the translation server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:5000"

// maxErrorBody bounds how much of a failed response body ends up in an error message.
const maxErrorBody = 512

var _ Backend = (*Client)(nil)

// Client talks to the translation server. It implements [Backend].
type Client struct {
	baseURL    string
	base       *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	logger     *log.Logger
}

// NewClient creates a client for the server at baseURL.
//
// The given [http.Client] is copied; when it has no cookie jar the copy gets one from [NewCookieJar].
func NewClient(baseURL string, client *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", shared.ErrInvalidConfig, baseURL)
	}

	var hc http.Client
	if client != nil {
		hc = *client
	}
	if hc.Jar == nil {
		hc.Jar = NewCookieJar()
	}

	return &Client{
		baseURL:    baseURL,
		base:       base,
		httpClient: &hc,
		jar:        hc.Jar,
		logger:     log.New(io.Discard),
	}, nil
}

// SetLogger replaces the client's logger. Requests are logged at debug level.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Get performs a GET request to the specified path and returns the raw response.
func (c *Client) Get(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

// Upload posts a multipart form to /upload: a "file" part when input has a file, otherwise a "text" field.
func (c *Client) Upload(ctx context.Context, input UploadInput) ([]models.Chapter, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if input.HasFile() {
		name := input.Filename
		if name == "" {
			name = "upload.txt"
		}
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, input.File); err != nil {
			return nil, fmt.Errorf("failed to write file part: %w", err)
		}
	} else if err := mw.WriteField("text", input.Text); err != nil {
		return nil, fmt.Errorf("failed to write text field: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/upload", &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var chapters []models.Chapter
	if err := decode(resp, &chapters); err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []models.Chapter{}
	}
	return chapters, nil
}

// Status fetches the session state from /status.
func (c *Client) Status(ctx context.Context) (*models.SessionStatus, error) {
	resp, err := c.Get(ctx, "/status")
	if err != nil {
		return nil, err
	}

	var status models.SessionStatus
	if err := decode(resp, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TranslateRange posts req to /translate-range. A non-success status in the body is not an error here.
func (c *Client) TranslateRange(ctx context.Context, req models.TranslateRangeRequest) (*models.TranslateRangeResponse, error) {
	var out models.TranslateRangeResponse
	if err := c.postJSON(ctx, "/translate-range", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportEpub posts req to /export-epub and returns the download URL. An empty URL is a malformed response.
func (c *Client) ExportEpub(ctx context.Context, req models.ExportRequest) (*models.ExportResponse, error) {
	var out models.ExportResponse
	if err := c.postJSON(ctx, "/export-epub", req, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, fmt.Errorf("%w: export response has no url", shared.ErrMalformedResponse)
	}
	return &out, nil
}

// ResolveURL resolves ref against the base URL.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q: %v", shared.ErrMalformedResponse, ref, err)
	}
	return c.base.ResolveReference(u).String(), nil
}

// Download streams the resource at ref into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, ref string, w io.Writer) (int64, error) {
	target, err := c.ResolveURL(ref)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", shared.GenerateID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: download status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to write download: %w", err)
	}
	return n, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.Post(ctx, path, data)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// do sends the request and reads the whole body. Only transport-level failures are errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*APIResponse, error) {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := shared.GenerateID()
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("response", "path", path, "status", resp.StatusCode, "bytes", len(data), "request_id", requestID)

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// decode checks the status and unmarshals the body into v.
func decode(resp *APIResponse, v any) error {
	if !resp.OK() {
		body := string(resp.Body)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(body))
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	return nil
}
