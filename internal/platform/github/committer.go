// Package github commits generated association images to a repository
// through the GitHub contents API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/generation"
	"github.com/phrazzld/voca-api/internal/platform/logger"
)

const requestTimeout = 30 * time.Second

// ErrNotConfigured is returned when no token or repository is configured.
var ErrNotConfigured = errors.New("github publishing is not configured")

// CommitResult describes a committed file.
type CommitResult struct {
	Path    string
	HTMLURL string
	Updated bool
}

type contentResponse struct {
	SHA string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		Path    string `json:"path"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
}

// Committer writes files into a single configured repository.
type Committer struct {
	cfg        config.GitHubConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCommitter creates a Committer. It fails with ErrNotConfigured when
// the token, owner or repository is missing.
func NewCommitter(cfg config.GitHubConfig, httpClient *http.Client, logger *slog.Logger) (*Committer, error) {
	if !cfg.Enabled() || cfg.Owner == "" || cfg.Repo == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = "docs/images"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Committer{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "github")),
	}, nil
}

// ImagePath returns the repository path used for a word's image.
func (c *Committer) ImagePath(word string) string {
	return path.Join(c.cfg.ImageDir, word+".png")
}

// CommitImage creates or replaces the image for word and returns the
// browser URL of the committed file.
func (c *Committer) CommitImage(ctx context.Context, word string, data []byte) (*CommitResult, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	filePath := c.ImagePath(word)
	sha, err := c.existingSHA(ctx, filePath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(putRequest{
		Message: "Add association image: " + word,
		Content: base64.StdEncoding.EncodeToString(data),
		Branch:  c.cfg.Branch,
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode commit request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, filePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Warn("github commit rejected",
			slog.String("path", filePath),
			slog.Int("status", resp.StatusCode))
		return nil, generation.StatusError("github", resp.StatusCode)
	}

	var out putResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding github response: %v", generation.ErrInvalidResponse, err)
	}
	if out.Content.HTMLURL == "" {
		return nil, fmt.Errorf("%w: github response missing html_url", generation.ErrInvalidResponse)
	}

	log.Info("image committed to github",
		slog.String("path", filePath),
		slog.Bool("updated", sha != ""))
	return &CommitResult{Path: filePath, HTMLURL: out.Content.HTMLURL, Updated: sha != ""}, nil
}

// existingSHA returns the blob SHA of filePath, or "" when it does not exist.
func (c *Committer) existingSHA(ctx context.Context, filePath string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, filePath, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var existing contentResponse
		if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
			return "", fmt.Errorf("%w: decoding github content: %v", generation.ErrInvalidResponse, err)
		}
		return existing.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", generation.StatusError("github", resp.StatusCode)
	}
}

func (c *Committer) do(ctx context.Context, method, filePath string, body io.Reader) (*http.Response, error) {
	segments := strings.Split(filePath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.Owner),
		url.PathEscape(c.cfg.Repo),
		strings.Join(segments, "/"))
	if method == http.MethodGet {
		endpoint += "?ref=" + url.QueryEscape(c.cfg.Branch)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build github request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: github request timed out", generation.ErrTransientFailure)
		}
		return nil, fmt.Errorf("%w: github request: %v", generation.ErrGenerationFailed, err)
	}
	return resp, nil
}
