package client

// http_client.go backs the comment section engine and the other CLI commands
// with the REST API.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"novelhub/internal/commentsync"
	"novelhub/internal/commenttree"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Role         string `json:"role"`
}

type NovelResponse struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Author        *string  `json:"author,omitempty"`
	Status        *string  `json:"status,omitempty"`
	TotalChapters int      `json:"totalChapters"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	ViewCount     int64    `json:"viewCount"`
}

type PaginatedNovelResponse struct {
	Content       []NovelResponse `json:"content"`
	TotalElements int64           `json:"totalElements"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
}

type ChapterResponse struct {
	ID      string `json:"id"`
	NovelID string `json:"novelId"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

type commentPage struct {
	Content       []commenttree.Comment `json:"content"`
	TotalElements int64                 `json:"totalElements"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalPages    int                   `json:"totalPages"`
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do runs one request with auth and decodes the response into out when the
// status matches.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed with status %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Auth

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var result AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result, http.StatusOK); err != nil {
		return nil, err
	}
	c.token = result.AccessToken
	return &result, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password, email string) error {
	body := map[string]string{"username": username, "password": password, "email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil, http.StatusCreated)
}

// Novels

func (c *HTTPClient) ListNovels(ctx context.Context, page, size int, search string) (*PaginatedNovelResponse, error) {
	path := fmt.Sprintf("/api/novels?page=%d&size=%d", page, size)
	if search != "" {
		path += "&search=" + search
	}
	var result PaginatedNovelResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetNovel(ctx context.Context, slug string) (*NovelResponse, error) {
	var result NovelResponse
	if err := c.do(ctx, http.MethodGet, "/api/novels/"+slug, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetChapter(ctx context.Context, slug string, number int) (*ChapterResponse, error) {
	path := fmt.Sprintf("/api/novels/%s/chapters/%d", slug, number)
	var result ChapterResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// Comments; this is the commentsync.API implementation.

func (c *HTTPClient) ListComments(ctx context.Context, subject commentsync.Subject, page, size int, sortBy, sortDir string) (*commentsync.Page, error) {
	var path string
	if subject.ChapterID != "" {
		path = "/api/comments/chapter/" + subject.ChapterID
	} else {
		path = "/api/comments/novel/" + subject.NovelID
	}
	path += fmt.Sprintf("?page=%d&size=%d&sort=%s", page, size, sortDir)

	var result commentPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &commentsync.Page{
		Comments: result.Content,
		Total:    int(result.TotalElements),
	}, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, req commentsync.CreateRequest) (*commenttree.Comment, error) {
	var result commenttree.Comment
	if err := c.do(ctx, http.MethodPost, "/api/comments", req, &result, http.StatusCreated); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateComment(ctx context.Context, id, content string) (*commenttree.Comment, error) {
	body := map[string]string{"content": content}
	var result commenttree.Comment
	if err := c.do(ctx, http.MethodPut, "/api/comments/"+id, body, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+id, nil, nil, http.StatusOK)
}

var _ commentsync.API = (*HTTPClient)(nil)
