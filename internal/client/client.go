// Package client provides a Go client for the Bender API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a Bender API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// UserID is sent as X-User-ID when set. The server uses it only to stop
	// an admin deleting their own account.
	UserID int64
}

// New creates a new Bender client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response with its decoded error message.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.StatusCode, e.Message)
}

// Errors
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Session is the result of a successful login.
type Session struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_admin"`
}

// User represents a user from the admin listing.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Skin represents a skin from the API.
type Skin struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TemplatePath *string `json:"template_path"`
}

// Article is an article as returned by the listings. Tags is the stored
// serialized form.
type Article struct {
	ID                  int64   `json:"id"`
	UserID              int64   `json:"user_id"`
	Title               string  `json:"title"`
	Subtitle            string  `json:"subtitle"`
	Content             string  `json:"content"`
	ContentHTML         string  `json:"content_html"`
	SkinID              int64   `json:"skin_id"`
	PublicationDatetime *string `json:"publication_datetime"`
	Author              string  `json:"author"`
	AuthorDescription   string  `json:"author_description"`
	Tags                string  `json:"tags"`
	UpdatedAt           *string `json:"updated_at"`
}

// ArticleDetail is a single article with decoded tags.
type ArticleDetail struct {
	Article
	Tags []any `json:"tags"`
}

// ArticleInput is the body of create and edit requests. UserID is only
// sent on create.
type ArticleInput struct {
	UserID              int64    `json:"user_id,omitempty"`
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle,omitempty"`
	Content             string   `json:"content"`
	SkinID              int64    `json:"skin_id"`
	PublicationDatetime string   `json:"publication_datetime,omitempty"`
	Author              string   `json:"author,omitempty"`
	AuthorDescription   string   `json:"author_description,omitempty"`
	Tags                []string `json:"tags,omitempty"`
}

// Signup creates a new account.
func (c *Client) Signup(username, password string) error {
	body := map[string]string{"username": username, "password": password}
	resp, err := c.doRequest(http.MethodPost, "/api/signup", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return ErrUsernameTaken
	}
	return expect(resp, "signup", http.StatusCreated)
}

// Login checks credentials. On success the returned user id is also
// remembered as the client's UserID.
func (c *Client) Login(username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}
	resp, err := c.doRequest(http.MethodPost, "/api/login", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if err := expect(resp, "login", http.StatusOK); err != nil {
		return nil, err
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	c.UserID = session.UserID
	return &session, nil
}

// Skins fetches all skins.
func (c *Client) Skins() ([]Skin, error) {
	var skins []Skin
	if err := c.getJSON("/api/skins", "list skins", &skins); err != nil {
		return nil, err
	}
	return skins, nil
}

// ListArticles fetches all articles, or those of userID when it is non-zero.
func (c *Client) ListArticles(userID int64) ([]Article, error) {
	path := "/api/articles"
	if userID != 0 {
		path += "?" + url.Values{"user_id": {strconv.FormatInt(userID, 10)}}.Encode()
	}

	var result struct {
		Articles []Article `json:"articles"`
	}
	if err := c.getJSON(path, "list articles", &result); err != nil {
		return nil, err
	}
	return result.Articles, nil
}

// CreateArticle creates an article. The server does not return its id.
func (c *Client) CreateArticle(in ArticleInput) error {
	resp, err := c.doRequest(http.MethodPost, "/api/articles", in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expect(resp, "create article", http.StatusCreated)
}

// GetArticle fetches a single article.
func (c *Client) GetArticle(id int64) (*ArticleDetail, error) {
	var article ArticleDetail
	if err := c.getJSON(fmt.Sprintf("/api/articles/%d", id), "get article", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// EditArticle replaces an article's editable fields.
func (c *Client) EditArticle(id int64, in ArticleInput) error {
	in.UserID = 0
	return c.send(http.MethodPut, fmt.Sprintf("/api/articles/%d", id), "edit article", in)
}

// DeleteArticle deletes an article.
func (c *Client) DeleteArticle(id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/api/articles/%d", id), "delete article", nil)
}

// AdminUsers lists every user.
func (c *Client) AdminUsers() ([]User, error) {
	var users []User
	if err := c.getJSON("/api/admin/users", "list users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminArticles lists every article.
func (c *Client) AdminArticles() ([]Article, error) {
	var articles []Article
	if err := c.getJSON("/api/admin/articles", "list all articles", &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// AdminDeleteUser deletes a user and all of their articles.
func (c *Client) AdminDeleteUser(id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), "delete user", nil)
}

// SetAdmin grants or revokes admin status.
func (c *Client) SetAdmin(id int64, isAdmin bool) error {
	body := map[string]bool{"is_admin": isAdmin}
	return c.send(http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), "set admin", body)
}

// AdminDeleteArticle deletes any article.
func (c *Client) AdminDeleteArticle(id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/api/admin/articles/%d", id), "delete article", nil)
}

// Admins lists the admin accounts.
func (c *Client) Admins() ([]User, error) {
	var admins []User
	if err := c.getJSON("/api/admins", "list admins", &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// doRequest performs an HTTP request with a JSON body.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.UserID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(c.UserID, 10))
	}
	return c.HTTPClient.Do(req)
}

func (c *Client) getJSON(path, op string, out any) error {
	resp, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := expect(resp, op, http.StatusOK); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) send(method, path, op string, body any) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expect(resp, op, http.StatusOK)
}

// expect turns any status other than want into an *APIError. A 404 also
// matches ErrNotFound.
func expect(resp *http.Response, op string, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	var decoded struct {
		Error string `json:"error"`
	}
	msg := string(bytes.TrimSpace(body))
	if json.Unmarshal(body, &decoded) == nil && decoded.Error != "" {
		msg = decoded.Error
	}
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	if resp.StatusCode == http.StatusNotFound {
		return errors.Join(apiErr, ErrNotFound)
	}
	return apiErr
}

// TestHelper provides utilities for creating logged-in clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateLoggedInClient signs up username (if needed) and logs in.
// This is a convenience method for tests.
func (h *TestHelper) CreateLoggedInClient(username, password string) (*Client, *Session, error) {
	c := New(h.BaseURL)
	if err := c.Signup(username, password); err != nil && !errors.Is(err, ErrUsernameTaken) {
		return nil, nil, fmt.Errorf("signup: %w", err)
	}
	session, err := c.Login(username, password)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return c, session, nil
}
