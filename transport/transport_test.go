package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront-client/transport"
	"github.com/stretchr/testify/require"
)

func TestClientSendsJSONBody(t *testing.T) {
	var (
		gotPath        string
		gotQuery       string
		gotContentType string
		gotRequestID   string
		gotBody        map[string]string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client, err := transport.New(server.URL + "/")
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &transport.Request{
		Method: http.MethodPost,
		Path:   "auth/login",
		Query:  map[string][]string{"lang": {"en"}},
		Body:   map[string]string{"email": "a@b.com", "password": "secret1"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, "/auth/login", gotPath)
	require.Equal(t, "lang=en", gotQuery)
	require.Equal(t, "application/json", gotContentType)
	require.NotEmpty(t, gotRequestID)
	require.Equal(t, "a@b.com", gotBody["email"])
}

func TestClientMultipartOmitsJSONContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		require.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="), contentType)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "product-1", r.FormValue("productId"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "photo.png", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte{0x89, 0x50}, content)

		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client, err := transport.New(server.URL)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &transport.Request{
		Method: http.MethodPost,
		Path:   "/products/upload",
		Multipart: &transport.MultipartBody{
			Fields: map[string]string{"productId": "product-1"},
			Files: []transport.MultipartFile{
				{Field: "image", Filename: "photo.png", Content: []byte{0x89, 0x50}},
			},
		},
	})
	require.NoError(t, err)
}

func TestClientReturnsResponseForErrorStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client, err := transport.New(server.URL)
	require.NoError(t, err)

	// No policy at this layer: the status comes back as data, not an error.
	resp, err := client.Do(context.Background(), &transport.Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestClientTimeoutIsTransportFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, err := transport.New(server.URL, transport.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &transport.Request{Method: http.MethodGet, Path: "/slow"})
	require.ErrorIs(t, err, transport.TransportErr)
	require.NotErrorIs(t, err, transport.UnauthorizedErr)
}

func TestClientRejectsRelativeBaseURL(t *testing.T) {
	_, err := transport.New("localhost:6789")
	require.Error(t, err)
}

func TestStatusErrorClasses(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		class      error
		message    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"token expired"}`, transport.UnauthorizedErr, "token expired"},
		{"forbidden", http.StatusForbidden, "", transport.ForbiddenErr, "Forbidden"},
		{"server fault", http.StatusBadGateway, "not json at all", transport.ServerErr, "Bad Gateway"},
		{"validation", http.StatusBadRequest, `{"success":false,"message":"email is required"}`, transport.ValidationErr, "email is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := transport.NewStatusError(tc.statusCode, []byte(tc.body))
			require.ErrorIs(t, err, tc.class)
			require.Equal(t, tc.message, err.Message)
			require.Equal(t, tc.statusCode, err.StatusCode)
		})
	}
}

func TestSessionExpiredError(t *testing.T) {
	err := transport.NewSessionExpiredError("")
	require.ErrorIs(t, err, transport.SessionExpiredErr)
	require.NotErrorIs(t, err, transport.UnauthorizedErr)
	require.Contains(t, err.Error(), "session expired")
}
