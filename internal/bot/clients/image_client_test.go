package clients_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/clients"
	"github.com/central-university-dev/go-hhh-bot/internal/config"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
)

func imageConfig(baseURL string) *config.Config {
	return &config.Config{
		ImageAPIBaseURL:            baseURL,
		ImageAPIKey:                "sk-test",
		ImageDownloadTimeout:       time.Second,
		ExternalRequestTimeout:     time.Second,
		RetryCount:                 0,
		RetryBackoff:               10 * time.Millisecond,
		RetryableStatusCodes:       []int{500},
		CBSlidingWindowSize:        100,
		CBMinimumRequiredCalls:     100,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 1,
		CBWaitDurationInOpenState:  time.Second,
	}
}

func TestImageClient_GenerateImage(t *testing.T) {
	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/generations":
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Котики", body["prompt"])
			assert.Equal(t, "512x512", body["size"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"url":"` + server.URL + `/image.png"}]}`))
		case "/image.png":
			_, _ = w.Write([]byte("png-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := clients.NewImageClient(imageConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))

	image, err := client.GenerateImage(context.Background(), "Котики")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), image)
}

func TestImageClient_RefusedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"safety system"}}`))
	}))
	defer server.Close()

	client := clients.NewImageClient(imageConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))

	image, err := client.GenerateImage(context.Background(), "что-то")
	require.NoError(t, err)
	assert.Nil(t, image)
}

func TestImageClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := clients.NewImageClient(imageConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.GenerateImage(context.Background(), "x")

	var invalid *customerrors.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)
}

func TestImageClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := clients.NewImageClient(imageConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.GenerateImage(context.Background(), "x")

	var httpErr *customerrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}
