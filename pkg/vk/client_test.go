package vk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

const threePhotos = `{
  "response": {
    "count": 3,
    "items": [
      {"id": 1, "owner_id": 1, "album_id": -6, "date": %d,
       "likes": {"count": 10, "user_likes": 0},
       "sizes": [
         {"type": "s", "width": 75, "height": 56, "url": "https://sun.userapi.com/1s.jpg"},
         {"type": "z", "width": 1280, "height": 960, "url": "https://sun.userapi.com/1z.jpg"}
       ]},
      {"id": 2, "owner_id": 1, "album_id": -6, "date": %d,
       "likes": {"count": 5, "user_likes": 1},
       "sizes": [
         {"type": "x", "width": 604, "height": 453, "url": "https://sun.userapi.com/2x.jpg"}
       ]},
      {"id": 3, "owner_id": 1, "album_id": -6, "date": %d,
       "likes": {"count": 10, "user_likes": 0},
       "sizes": [
         {"type": "w", "width": 2560, "height": 1920, "url": "https://sun.userapi.com/3w.jpg"},
         {"type": "y", "width": 807, "height": 605, "url": "https://sun.userapi.com/3y.jpg"}
       ]}
    ]
  }
}`

func testConfig(serverURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tokens.VKToken = "vk-secret-token"
	cfg.VK.APIURL = serverURL
	cfg.VK.TimeZone = "UTC"
	cfg.HTTP.Timeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewTestLogger()
	client, err := NewClient(testConfig(server.URL), log)
	require.NoError(t, err)
	return client, log
}

func TestNewClient(t *testing.T) {
	cfg := testConfig("https://api.vk.com/method")
	client, err := NewClient(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "vk-secret-token", client.token)
	assert.Equal(t, "5.131", client.version)
	assert.Equal(t, time.UTC, client.location)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)

	cfg.VK.TimeZone = "Nowhere/Special"
	_, err = NewClient(cfg, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
}

func TestFetchProfilePhotos(t *testing.T) {
	body := fmt.Sprintf(threePhotos, day("2024-01-01"), day("2024-01-02"), day("2024-01-03"))

	var gotQuery map[string]string
	client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/photos.get", r.URL.Path)
		assert.Equal(t, "vkbackup/1.0", r.Header.Get("User-Agent"))
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})

	photos, err := client.FetchProfilePhotos(context.Background(), " 12345 ", 3)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"owner_id":     "12345",
		"album_id":     "profile",
		"extended":     "1",
		"photo_sizes":  "1",
		"count":        "3",
		"access_token": "vk-secret-token",
		"v":            "5.131",
	}, gotQuery)

	require.Len(t, photos, 3)
	assert.Equal(t, []string{"10.jpg", "5.jpg", "10_2024-01-03.jpg"},
		[]string{photos[0].FileName, photos[1].FileName, photos[2].FileName})
	assert.Equal(t, []string{"z", "x", "w"},
		[]string{photos[0].SizeTag, photos[1].SizeTag, photos[2].SizeTag})
	assert.Equal(t, "https://sun.userapi.com/3w.jpg", photos[2].SourceURL)

	// The token must never reach the logs
	assert.NotContains(t, log.String(), "vk-secret-token")
	assert.True(t, log.HasMessage("fetched profile photos"))
}

func TestFetchProfilePhotosAPIError(t *testing.T) {
	client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"error_code": 30, "error_msg": "This profile is private"}}`)
	})

	photos, err := client.FetchProfilePhotos(context.Background(), "1", 5)
	assert.Empty(t, photos)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeAPI, appErr.Type)
	assert.Equal(t, apperrors.OpFetch, appErr.Op)
	assert.Equal(t, 30, appErr.Code)
	assert.Equal(t, "This profile is private", appErr.Message)
	assert.True(t, log.HasError())
}

func TestFetchProfilePhotosTransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"bad gateway", http.StatusBadGateway},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, "upstream trouble")
			})

			photos, err := client.FetchProfilePhotos(context.Background(), "1", 5)
			assert.Nil(t, photos)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrorTypeTransport, appErr.Type)
			assert.Equal(t, tt.status, appErr.Code)
		})
	}
}

func TestFetchProfilePhotosNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, err := NewClient(testConfig(serverURL), logger.NewTestLogger())
	require.NoError(t, err)

	_, err = client.FetchProfilePhotos(context.Background(), "1", 5)
	assert.Equal(t, apperrors.ErrorTypeTransport, apperrors.TypeOf(err))
	assert.Equal(t, apperrors.OpFetch, apperrors.OpOf(err))
}

func TestFetchProfilePhotosSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `<html>oops</html>`, "failed to parse response"},
		{"wrong type", `{"response": {"items": "nope"}}`, "failed to parse response"},
		{"no response", `{}`, "response object is missing"},
		{"item without sizes", `{"response": {"count": 1, "items": [{"id": 9, "likes": {"count": 1}}]}}`, "no size variants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			_, err := client.FetchProfilePhotos(context.Background(), "1", 1)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeSchema, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchProfilePhotosInputValidation(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.FetchProfilePhotos(context.Background(), "1", 0)
	assert.Equal(t, apperrors.ErrorTypeConfig, apperrors.TypeOf(err))

	_, err = client.FetchProfilePhotos(context.Background(), "   ", 5)
	assert.Equal(t, apperrors.ErrorTypeConfig, apperrors.TypeOf(err))

	assert.False(t, called, "no request should be sent for invalid input")
}

func TestFetchProfilePhotosClampsCount(t *testing.T) {
	client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("count"))
		fmt.Fprint(w, `{"response": {"count": 0, "items": []}}`)
	})

	photos, err := client.FetchProfilePhotos(context.Background(), "1", 5000)
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.True(t, log.HasMessage("count exceeds API page limit, clamping"))
}

func TestFetchProfilePhotosCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": {"count": 0, "items": []}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchProfilePhotos(ctx, "1", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPhotosGetURL(t *testing.T) {
	u := PhotosGetURL("https://api.vk.com/method/", "42", 5, "tok", "5.131")
	assert.True(t, strings.HasPrefix(u, "https://api.vk.com/method/photos.get?"))
	assert.Contains(t, u, "album_id=profile")
	assert.Contains(t, u, "owner_id=42")

	redacted := redactURL(u)
	assert.NotContains(t, redacted, "tok&")
	assert.Contains(t, redacted, "access_token=%2A%2A%2A")
}
