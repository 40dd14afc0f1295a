/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the scene-sync API, used by the
// desktop app under the enable_server feature flag.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// SceneSummary is the listing projection of a synced scene.
type SceneSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SceneEnvelope matches the server response for a single scene fetch.
type SceneEnvelope struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Version   int64           `json:"version"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Doc       json.RawMessage `json:"doc"`
}

// ListScenes returns the caller's synced scenes, newest first.
func (c *Client) ListScenes(ctx context.Context) ([]SceneSummary, error) {
	var list []SceneSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/scenes", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetScene fetches one scene document by id.
func (c *Client) GetScene(ctx context.Context, id int64) (*SceneEnvelope, error) {
	var env SceneEnvelope
	path := fmt.Sprintf("/api/scenes/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushScene uploads a scene document under name, creating it or bumping its
// version if it already exists.
func (c *Client) PushScene(ctx context.Context, name string, doc json.RawMessage) (*SceneSummary, error) {
	req := map[string]any{"name": name, "doc": doc}
	var sum SceneSummary
	if err := c.doJSON(ctx, http.MethodPost, "/api/scenes", req, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
