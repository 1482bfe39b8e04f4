package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

// maxBodyPreview bounds how much of an unexpected body ends up in the logs
const maxBodyPreview = 200

// Client fetches profile photos from the VK API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	version    string
	userAgent  string
	location   *time.Location
	logger     logger.Logger
}

// NewClient creates a VK client from the vk and http sections of cfg.
// The token is taken from cfg.Tokens.VKToken.
func NewClient(cfg *config.Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	loc, err := cfg.VK.Location()
	if err != nil {
		return nil, apperrors.Config("invalid vk timezone", err)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		baseURL:    cfg.VK.APIURL,
		token:      cfg.Tokens.VKToken,
		version:    cfg.VK.APIVersion,
		userAgent:  cfg.HTTP.UserAgent,
		location:   loc,
		logger:     log.WithField("component", "vk"),
	}, nil
}

// FetchProfilePhotos requests up to count photos from the user's profile album and
// returns one descriptor per photo, largest rendition first-listed on ties, with
// like-count based file names.
func (c *Client) FetchProfilePhotos(ctx context.Context, userID string, count int) ([]Photo, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &apperrors.Error{Type: apperrors.ErrorTypeConfig, Op: apperrors.OpFetch, Message: "user id is required"}
	}
	if count <= 0 {
		return nil, &apperrors.Error{Type: apperrors.ErrorTypeConfig, Op: apperrors.OpFetch, Message: fmt.Sprintf("count must be positive, got %d", count)}
	}
	if count > MaxCount {
		c.logger.WarnWithFields("count exceeds API page limit, clamping", map[string]interface{}{
			"requested": count,
			"max":       MaxCount,
		})
		count = MaxCount
	}

	requestURL := PhotosGetURL(c.baseURL, userID, count, c.token, c.version)
	c.logger.DebugWithFields("fetching profile photos", map[string]interface{}{
		"user_id": userID,
		"count":   count,
	})

	var response PhotosResponse
	if err := c.getJSON(ctx, requestURL, &response); err != nil {
		return nil, err
	}

	if response.Error != nil {
		c.logger.ErrorWithFields("VK API returned an error", map[string]interface{}{
			"user_id":    userID,
			"error_code": response.Error.Code,
			"error_msg":  response.Error.Message,
		})
		return nil, apperrors.API(apperrors.OpFetch, response.Error.Code, response.Error.Message)
	}
	if response.Response == nil {
		return nil, apperrors.Schema(apperrors.OpFetch, "response object is missing", nil)
	}

	photos, err := BuildPhotos(response.Response.Items, c.location)
	if err != nil {
		c.logger.WithError(err).Error("unexpected photo item shape")
		return nil, err
	}

	c.logger.InfoWithFields("fetched profile photos", map[string]interface{}{
		"user_id":   userID,
		"available": response.Response.Count,
		"fetched":   len(photos),
	})

	return photos, nil
}

// getJSON performs a GET request and decodes a 200 response body into target
func (c *Client) getJSON(ctx context.Context, requestURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return apperrors.Transport(apperrors.OpFetch, 0, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logURL := redactURL(requestURL)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      logURL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return apperrors.Transport(apperrors.OpFetch, 0, "network error", err)
	}
	defer resp.Body.Close()
	logger.LogRequest(c.logger, req.Method, logURL, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport(apperrors.OpFetch, resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorWithFields("unexpected status from VK", map[string]interface{}{
			"status":       resp.StatusCode,
			"body_preview": preview(body),
		})
		return apperrors.Transport(apperrors.OpFetch, resp.StatusCode, "unexpected status "+http.StatusText(resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, target); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return apperrors.Schema(apperrors.OpFetch, "failed to parse response", err)
	}

	return nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > maxBodyPreview {
		s = s[:maxBodyPreview] + "..."
	}
	return s
}
