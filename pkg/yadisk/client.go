package yadisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"vkbackup/pkg/config"
	apperrors "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

const maxBodyPreview = 200

// Client talks to the Yandex.Disk REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	logger     logger.Logger
}

// NewClient creates a Yandex.Disk client from the yandex_disk and http
// sections of cfg. The token is taken from cfg.Tokens.YDToken.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		baseURL:    cfg.YandexDisk.APIURL,
		token:      cfg.Tokens.YDToken,
		userAgent:  cfg.HTTP.UserAgent,
		logger:     log.WithField("component", "yadisk"),
	}
}

// EnsureFolder creates the folder at path. A folder that already exists
// (409 Conflict) counts as success.
func (c *Client) EnsureFolder(ctx context.Context, path string) error {
	status, body, err := c.do(ctx, apperrors.OpCreateFolder, http.MethodPut, ResourcesURL(c.baseURL, path))
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		c.logger.InfoWithFields("folder created", map[string]interface{}{"path": path})
		return nil
	case http.StatusConflict:
		c.logger.DebugWithFields("folder already exists", map[string]interface{}{"path": path})
		return nil
	}

	return c.statusError(apperrors.OpCreateFolder, status, body, map[string]interface{}{"path": path})
}

// UploadByURL asks the disk to download sourceURL into folder/fileName on its
// own. Only 202 Accepted counts as success; the returned href points at the
// asynchronous operation and is not polled.
func (c *Client) UploadByURL(ctx context.Context, folder, fileName, sourceURL string) (string, error) {
	status, body, err := c.do(ctx, apperrors.OpUpload, http.MethodPost, UploadURL(c.baseURL, folder, fileName, sourceURL))
	if err != nil {
		return "", err
	}

	if status != http.StatusAccepted {
		return "", c.statusError(apperrors.OpUpload, status, body, map[string]interface{}{
			"path": RemotePath(folder, fileName),
		})
	}

	var link Link
	if len(body) > 0 {
		// The operation link is informational only
		if err := json.Unmarshal(body, &link); err != nil {
			c.logger.WarnWithFields("could not parse operation link", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	c.logger.DebugWithFields("upload accepted", map[string]interface{}{
		"path":      RemotePath(folder, fileName),
		"operation": link.Href,
	})

	return link.Href, nil
}

// do sends an authorized request and returns the status and the full body
func (c *Client) do(ctx context.Context, op apperrors.Op, method, requestURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return 0, nil, apperrors.Transport(op, 0, "failed to create request", err)
	}
	req.Header.Set("Authorization", AuthScheme+" "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logURL := redactURL(requestURL)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = logURL
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      logURL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return 0, nil, apperrors.Transport(op, 0, "network error", err)
	}
	defer resp.Body.Close()
	logger.LogRequest(c.logger, method, logURL, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.Transport(op, resp.StatusCode, "failed to read response body", err)
	}

	return resp.StatusCode, body, nil
}

// statusError converts an unexpected status into a TransportError, using the
// Yandex error body for the message when it can be decoded.
func (c *Client) statusError(op apperrors.Op, status int, body []byte, fields map[string]interface{}) error {
	message := fmt.Sprintf("unexpected status %d %s", status, http.StatusText(status))

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if detail := apiErr.String(); detail != "" {
			message = detail
		}
	}

	fields["status"] = status
	fields["error"] = message
	if len(body) > 0 {
		fields["body_preview"] = preview(body)
	}
	c.logger.ErrorWithFields(string(op)+" failed", fields)

	return apperrors.Transport(op, status, message, nil)
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > maxBodyPreview {
		s = s[:maxBodyPreview] + "..."
	}
	return s
}
