package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skanerxe/nutrition-helper/internal/config"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
)

// RemoteStore reads and writes whole documents against the remote versioned
// file API. These are the only network-facing calls in the system.
type RemoteStore interface {
	// Fetch returns the document bytes and its current version token.
	Fetch(ctx context.Context, name string) ([]byte, string, error)
	// Store writes full document contents. When expectedToken is non-empty it
	// is attached so the remote side rejects the write if the document changed
	// concurrently; the new version token is returned on success.
	Store(ctx context.Context, name string, body []byte, expectedToken string) (string, error)
}

// GitHubStore stores each document as a JSON file in a GitHub repository,
// using the blob sha returned by the contents API as the version token.
type GitHubStore struct {
	httpClient *http.Client
	baseURL    string
	token      string
	owner      string
	repo       string
	branch     string
	basePath   string
}

// NewGitHubStore creates a contents-API-backed remote store
func NewGitHubStore(cfg config.GitHubConfig) *GitHubStore {
	return &GitHubStore{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
		token:      cfg.Token,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     cfg.Branch,
		basePath:   cfg.BasePath,
	}
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type commitResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (s *GitHubStore) contentsURL(name string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s/%s.json", s.baseURL, s.owner, s.repo, s.basePath, name)
}

func (s *GitHubStore) request(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// Fetch reads a document. A missing file is reported as a not-found error,
// distinct from transport failures.
func (s *GitHubStore) Fetch(ctx context.Context, name string) ([]byte, string, error) {
	url := s.contentsURL(name) + "?ref=" + s.branch

	respBody, statusCode, err := s.request(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", apperrors.NewTransportError(err, "fetch").WithContext("document", name)
	}

	switch {
	case statusCode == http.StatusNotFound:
		return nil, "", apperrors.ErrRemoteNotFound
	case statusCode >= 400:
		return nil, "", apperrors.NewTransportError(
			fmt.Errorf("unexpected status %d: %s", statusCode, respBody), "fetch").
			WithContext("document", name)
	}

	var contents contentsResponse
	if err := json.Unmarshal(respBody, &contents); err != nil {
		return nil, "", apperrors.NewDecodeError(err, name)
	}

	data, err := decodeContent(name, contents.Content)
	if err != nil {
		return nil, "", err
	}

	return data, contents.SHA, nil
}

type storeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// Store writes a document. A stale expectedToken yields a version-conflict
// error; network and server failures yield transport errors.
func (s *GitHubStore) Store(ctx context.Context, name string, body []byte, expectedToken string) (string, error) {
	payload, err := json.Marshal(storeRequest{
		Message: fmt.Sprintf("Update %s.json", name),
		Content: encodeContent(body),
		Branch:  s.branch,
		SHA:     expectedToken,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	respBody, statusCode, err := s.request(ctx, http.MethodPut, s.contentsURL(name), payload)
	if err != nil {
		return "", apperrors.NewTransportError(err, "store").WithContext("document", name)
	}

	switch {
	case statusCode == http.StatusOK || statusCode == http.StatusCreated:
		// fall through to parse the new sha
	case statusCode == http.StatusConflict || statusCode == http.StatusUnprocessableEntity:
		// 409: sha does not match the current revision. 422: the file exists
		// but no sha was supplied. Both mean the document moved under us.
		return "", apperrors.ErrVersionConflict
	default:
		return "", apperrors.NewTransportError(
			fmt.Errorf("unexpected status %d: %s", statusCode, respBody), "store").
			WithContext("document", name)
	}

	var commit commitResponse
	if err := json.Unmarshal(respBody, &commit); err != nil {
		return "", apperrors.NewDecodeError(err, name)
	}

	return commit.Content.SHA, nil
}
