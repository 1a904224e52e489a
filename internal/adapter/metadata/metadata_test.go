package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    string
		wantErr bool
	}{
		{name: "https kept", target: "https://example.com/a", want: "https://example.com/a"},
		{name: "http kept", target: "HTTP://example.com", want: "http://example.com"},
		{name: "scheme defaulted", target: "example.com/docs", want: "https://example.com/docs"},
		{name: "no host", target: "https://", wantErr: true},
		{name: "malformed", target: "https://exa mple.com/%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ResolveURL(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.UserAgent(), "Mozilla/5.0")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOGImage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *string
	}{
		{
			name: "og image",
			body: `<html><head><meta property="og:image" content="https://cdn.example.com/a.png"></head></html>`,
			want: ptr("https://cdn.example.com/a.png"),
		},
		{
			name: "twitter fallback",
			body: `<html><head><meta name="twitter:image" content="https://cdn.example.com/t.png"></head></html>`,
			want: ptr("https://cdn.example.com/t.png"),
		},
		{
			name: "og preferred over twitter",
			body: `<head><meta name="twitter:image" content="/t.png"><meta property="OG:IMAGE" content="/og.png"></head>`,
			want: ptr("/og.png"),
		},
		{
			name: "none",
			body: `<html><head><title>docs</title></head></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			page, err := ResolveURL(srv.URL + "/docs/index.html")
			require.NoError(t, err)

			got, err := NewFetcher(time.Second).OGImage(context.Background(), page)

			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			if (*tt.want)[0] == '/' {
				assert.Equal(t, srv.URL+*tt.want, *got)
			} else {
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestOGImageRelativeToPage(t *testing.T) {
	srv := serve(t, http.StatusOK, `<meta property="og:image" content="img/preview.png">`)
	page, err := ResolveURL(srv.URL + "/docs/index.html")
	require.NoError(t, err)

	got, err := NewFetcher(time.Second).OGImage(context.Background(), page)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, srv.URL+"/docs/img/preview.png", *got)
}

func TestOGImageStatusError(t *testing.T) {
	srv := serve(t, http.StatusForbidden, "denied")
	page, err := ResolveURL(srv.URL)
	require.NoError(t, err)

	got, err := NewFetcher(time.Second).OGImage(context.Background(), page)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Nil(t, got)
}

func ptr(s string) *string {
	return &s
}
