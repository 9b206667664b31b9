package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/pkg/logger"
)

// Client pushes artifacts to the object-store HTTP surface:
//
//	POST {base}/storage/v1/object/{bucket}/{path}   multipart, bearer auth, upsert
//	GET  {base}/storage/v1/object/public-url/{bucket}/{path}
//
// Uploads are retried with linear backoff (base, 2*base, ...); the
// public-URL lookup is never retried. The store upserts on path conflicts,
// so re-sending bytes after a false-negative timeout is safe, just
// redundant.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      service.TokenSource
	attempts    int
	backoffBase time.Duration
	sleep       func(time.Duration)
	logger      logger.Logger
}

type Option func(*Client)

// WithSleep replaces the inter-attempt sleep. Tests use it to observe
// backoff without waiting.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, tokens service.TokenSource, attempts int, backoffBase time.Duration, log logger.Logger, opts ...Option) *Client {
	if attempts < 1 {
		attempts = 1
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		tokens:      tokens,
		attempts:    attempts,
		backoffBase: backoffBase,
		sleep:       time.Sleep,
		logger:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(path))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// Upload sends one local artifact and resolves its public URL. Up to
// c.attempts POSTs are made; between failures the client sleeps
// backoffBase*attemptNumber. Exhausting the budget is terminal and the
// error names the attempt count.
func (c *Client) Upload(ctx context.Context, bucket, path, localPath, contentType string) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("artifact %s missing: %w", localPath, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("artifact %s is empty", localPath)
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil || token == "" {
		c.logger.Warn("no access token available, uploading unauthenticated",
			zap.String("bucket", bucket), zap.String("path", path), zap.Error(err))
		token = ""
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		lastErr = c.postObject(ctx, token, bucket, path, localPath, contentType)
		if lastErr == nil {
			return c.resolvePublicURL(ctx, bucket, path)
		}

		c.logger.Warn("storage upload attempt failed",
			zap.String("bucket", bucket), zap.String("path", path),
			zap.Int("attempt", attempt), zap.Error(lastErr))

		if attempt < c.attempts {
			c.sleep(c.backoffBase * time.Duration(attempt))
		}
	}

	return "", fmt.Errorf("upload of %s/%s failed after %d attempts: %w", bucket, path, c.attempts, lastErr)
}

// postObject streams the artifact straight from disk into the request body.
// Compressed videos run to tens of megabytes, so the multipart framing is
// written through a pipe rather than assembled in memory per attempt.
func (c *Client) postObject(ctx context.Context, token, bucket, path, localPath, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", localPath, err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(localPath)))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("build multipart body: %w", err))
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(fmt.Errorf("read artifact %s: %w", localPath, err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(bucket, path), pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-upsert", "true")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage responded %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// resolvePublicURL looks up the durable URL for an uploaded object. A
// missing URL is equivalent to an upload failure.
func (c *Client) resolvePublicURL(ctx context.Context, bucket, path string) (string, error) {
	u := fmt.Sprintf("%s/storage/v1/object/public-url/%s/%s", c.baseURL, url.PathEscape(bucket), escapePath(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve public url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolve public url: storage responded %d", resp.StatusCode)
	}

	var payload struct {
		PublicURL string `json:"publicUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("resolve public url: %w", err)
	}
	if payload.PublicURL == "" {
		return "", fmt.Errorf("resolve public url: no url returned for %s/%s", bucket, path)
	}
	return payload.PublicURL, nil
}

// Remove deletes one object. Best-effort, not retried.
func (c *Client) Remove(ctx context.Context, bucket, path string) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		token = ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(bucket, path), nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete object: storage responded %d", resp.StatusCode)
	}
	return nil
}

// StaticTokenSource serves a fixed service key. An empty key means
// unauthenticated uploads.
type StaticTokenSource string

func (s StaticTokenSource) AccessToken(context.Context) (string, error) {
	return string(s), nil
}
