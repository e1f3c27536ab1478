package transform

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bridge-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestSimulateColorBlind_PostsMultipartAndParsesResult(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/simulate-color-blind/deuteranopia", r.URL.Path)
		req.NoError(r.ParseMultipartForm(1 << 20))
		req.Equal("blob://author/pic.jpg", r.FormValue("image"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"simulatedImageUrl": "https://sim/out.png"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, slog.Default())
	url, err := client.SimulateColorBlind(context.Background(), "blob://author/pic.jpg")
	req.NoError(err)
	req.Equal("https://sim/out.png", url)
}

func TestSimulateColorBlind_NonOKStatusIsAnError(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "deuteranopia", time.Second, slog.Default())
	_, err := client.SimulateColorBlind(context.Background(), "blob://author/pic.jpg")

	var transformErr *errors.TransformError
	req.ErrorAs(err, &transformErr)
	req.Equal(http.StatusBadGateway, transformErr.StatusCode)
}

func TestSimulateColorBlind_EmptyResultURLIsAnError(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "deuteranopia", time.Second, slog.Default())
	_, err := client.SimulateColorBlind(context.Background(), "blob://author/pic.jpg")
	req.Error(err)
}

func TestSimulateColorBlind_ConfiguredVariantInPath(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/simulate-color-blind/protanopia", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"simulatedImageUrl": "https://sim/out.png"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "protanopia", time.Second, slog.Default())
	_, err := client.SimulateColorBlind(context.Background(), "blob://author/pic.jpg")
	req.NoError(err)
}
