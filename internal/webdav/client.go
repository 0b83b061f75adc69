// Package webdav uploads image bytes to a WebDAV directory and derives
// the public URL served back into notes. Only the PUT/PROPFIND/MKCOL
// subset this tool needs is implemented.
package webdav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/halvard/ansuz/internal/apperr"
)

const maxErrBody = 200

var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|bmp)$`)

// Config holds the WebDAV connection settings.
type Config struct {
	BaseURL      string
	Username     string
	Password     string
	Path         string // remote directory, e.g. /images
	PublicPrefix string // URL prefix written into notes
}

// Client talks to one configured WebDAV store.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// New creates a Client. logger may be nil.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
		log:  logger,
	}
}

// Upload stores data under fileName in the configured directory and
// returns the public URL. A name without a recognised image extension
// gets .png appended first.
func (c *Client) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", fmt.Errorf("webdav: base url: %w", apperr.ErrConfig)
	}
	if !imageExtRe.MatchString(fileName) {
		fileName += ".png"
	}

	// Best effort: a failed directory check is logged, not fatal — the
	// PUT itself decides whether the upload succeeds.
	if !c.ensureDir(ctx) {
		c.log.Warn("webdav: could not ensure remote directory, uploading anyway",
			slog.String("dir", c.dirURL()))
	}

	uploadURL := c.dirURL()
	if !strings.HasSuffix(uploadURL, "/") {
		uploadURL += "/"
	}
	uploadURL += fileName

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("webdav: build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("webdav: put %s: %v: %w", fileName, err, apperr.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return "", fmt.Errorf("webdav: upload failed, status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), apperr.ErrRemote)
	}

	url := c.PublicURL(fileName)
	c.log.Debug("webdav: uploaded",
		slog.String("file", fileName),
		slog.Int("bytes", len(data)),
		slog.String("url", url))
	return url, nil
}

// PublicURL joins the configured public prefix and fileName.
func (c *Client) PublicURL(fileName string) string {
	return strings.TrimSuffix(c.cfg.PublicPrefix, "/") + "/" + fileName
}

// HostedPrefixes returns the URL prefixes under which uploads of this
// client are reachable; references already pointing there are skipped by
// batch runs.
func (c *Client) HostedPrefixes() []string {
	var out []string
	if p := strings.TrimSuffix(c.cfg.PublicPrefix, "/"); p != "" {
		out = append(out, p)
	}
	if c.cfg.BaseURL != "" {
		out = append(out, c.cfg.BaseURL)
	}
	return out
}

// TestConnection issues the directory PROPFIND and reports success by
// status range alone.
func (c *Client) TestConnection(ctx context.Context) bool {
	status, err := c.propfind(ctx)
	if err != nil {
		c.log.Debug("webdav: connection test failed", slog.String("error", err.Error()))
		return false
	}
	return status >= 200 && status < 300
}

func (c *Client) dirURL() string {
	return c.cfg.BaseURL + c.cfg.Path
}

// ensureDir checks the remote directory with PROPFIND Depth:0 and issues
// MKCOL when it is missing. Any 2xx from either request counts as success.
func (c *Client) ensureDir(ctx context.Context) bool {
	status, err := c.propfind(ctx)
	if err != nil {
		c.log.Debug("webdav: directory check failed", slog.String("error", err.Error()))
		return false
	}
	if status >= 200 && status < 300 {
		return true
	}
	if status != http.StatusNotFound {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, "MKCOL", c.dirURL(), nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("webdav: mkcol failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Debug("webdav: remote directory created", slog.String("dir", c.dirURL()))
		return true
	}
	return false
}

func (c *Client) propfind(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "PROPFIND", c.dirURL(), nil)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Depth", "0")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("propfind %s: %v: %w", c.dirURL(), err, apperr.ErrNetwork)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
