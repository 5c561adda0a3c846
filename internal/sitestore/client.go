// Package sitestore is a client for the key/value store that published
// pages live in.
package sitestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/mdsite/internal/doctree"
)

// Client communicates with the page store HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Page is a rendered page as stored.
type Page struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	HTML        string            `json:"html"`
	ContentHash string            `json:"content_hash"`
	Index       []doctree.Chunk   `json:"index,omitempty"`
	Links       []string          `json:"links,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PageEntry is a single page from a prefix scan.
type PageEntry struct {
	Key  string `json:"key_path"`
	Page Page   `json:"value"`
}

// HashRef points a content hash at the slug it was published under.
type HashRef struct {
	Slug string `json:"slug"`
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// PageKey is the store key for a page of site.
func PageKey(site, slug string) string {
	return "sites/" + site + "/pages/" + slug
}

// HashKey is the store key for the dedup reference of a content hash.
func HashKey(site, hash string) string {
	return "sites/" + site + "/by_hash/" + hash
}

// PagesPrefix is the key prefix all pages of site share.
func PagesPrefix(site string) string {
	return "sites/" + site + "/pages"
}

type nodeRequest struct {
	Value any `json:"value"`
}

// PutPage stores or replaces the page at key.
func (c *Client) PutPage(ctx context.Context, key string, page Page) error {
	return c.put(ctx, key, page)
}

// GetPage retrieves a page by key. A missing page is (nil, nil).
func (c *Client) GetPage(ctx context.Context, key string) (*Page, error) {
	var node struct {
		Value Page `json:"value"`
	}
	found, err := c.get(ctx, key, &node)
	if err != nil || !found {
		return nil, err
	}
	return &node.Value, nil
}

// DeletePage removes the page at key.
func (c *Client) DeletePage(ctx context.Context, key string) error {
	return c.delete(ctx, key)
}

// ListPages does a prefix scan under prefix.
func (c *Client) ListPages(ctx context.Context, prefix string, limit int) ([]PageEntry, error) {
	u := c.baseURL + "/kv/" + prefix + "/*"
	if limit > 0 {
		u += "?limit=" + url.QueryEscape(strconv.Itoa(limit))
	}
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list pages "+prefix, resp)
	}

	var result struct {
		Nodes []PageEntry `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	return result.Nodes, nil
}

// PutRef records that hash was published as slug.
func (c *Client) PutRef(ctx context.Context, key string, ref HashRef) error {
	return c.put(ctx, key, ref)
}

// GetRef looks up a dedup reference. A missing reference is (nil, nil).
func (c *Client) GetRef(ctx context.Context, key string) (*HashRef, error) {
	var node struct {
		Value HashRef `json:"value"`
	}
	found, err := c.get(ctx, key, &node)
	if err != nil || !found {
		return nil, err
	}
	return &node.Value, nil
}

// DeleteRef removes a dedup reference.
func (c *Client) DeleteRef(ctx context.Context, key string) error {
	return c.delete(ctx, key)
}

func (c *Client) delete(ctx context.Context, key string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/kv/"+key, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete "+key, resp)
	}
	return nil
}

func (c *Client) put(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(nodeRequest{Value: value})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	resp, err := c.do(ctx, http.MethodPut, c.baseURL+"/kv/"+key, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put "+key, resp)
	}
	return nil
}

func (c *Client) get(ctx context.Context, key string, into any) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/kv/"+key, nil)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, statusError("get "+key, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.httpClient.Do(req)
}

// statusError reads a bounded part of the body. Rate limiting and server
// errors come back as *RetryableError.
func statusError(op string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
