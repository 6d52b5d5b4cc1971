// Package transport performs single request/response exchanges against the
// storefront backend. It owns the base URL, the timeout and the wire
// encoding, and nothing else: retry and refresh policy live a layer up.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Request describes one exchange. Body is JSON-encoded; when Multipart is set
// it takes precedence and the multipart writer picks the content type.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Header    http.Header
	Body      any
	Multipart *MultipartBody
}

// MultipartBody is a multipart/form-data payload, e.g. a file upload.
type MultipartBody struct {
	Fields map[string]string
	Files  []MultipartFile
}

// MultipartFile is one file part of a multipart payload.
type MultipartFile struct {
	Field    string
	Filename string
	Content  []byte
}

// Response is a completed exchange. The body has been fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "[Response.DecodeJSON] unmarshal")
	}
	return nil
}

// Doer performs one exchange. Implemented by Client and wrapped by the
// session manager.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Client is the bare HTTP transport. It returns a Response for every HTTP
// status; only network and timeout failures produce an error, and those are
// always a *Error of the transport class.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Doer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client (for custom TLS,
// proxies, or test doubles).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[transport.New] invalid base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[transport.New] base URL %q must be absolute", baseURL)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs the exchange. The request is rebuilt from the descriptor on
// every call, so the same *Request can safely be sent more than once.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] NewRequestWithContext")
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-ID", uuid.New().String())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewTransportError(err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// encodeBody serializes the request payload. Multipart payloads choose their
// own content type so the boundary survives; JSON is the default for
// everything else.
func encodeBody(req *Request) (io.Reader, string, error) {
	if req.Multipart != nil {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for field, value := range req.Multipart.Fields {
			if err := writer.WriteField(field, value); err != nil {
				return nil, "", errors.Wrap(err, "[encodeBody] WriteField")
			}
		}
		for _, file := range req.Multipart.Files {
			part, err := writer.CreateFormFile(file.Field, file.Filename)
			if err != nil {
				return nil, "", errors.Wrap(err, "[encodeBody] CreateFormFile")
			}
			if _, err := part.Write(file.Content); err != nil {
				return nil, "", errors.Wrap(err, "[encodeBody] write file part")
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", errors.Wrap(err, "[encodeBody] close multipart writer")
		}
		return buf, writer.FormDataContentType(), nil
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "[encodeBody] marshal JSON body")
	}
	return bytes.NewReader(data), "application/json", nil
}
