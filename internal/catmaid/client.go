// Package catmaid is a small client for the CATMAID HTTP API, covering
// skeleton download and name resolution. Responses are cached in memory so
// repeat fetches within a session do not hit the server again.
package catmaid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"neurita/arbor/internal/neuron"
)

// Client talks to one CATMAID server/project.
type Client struct {
	cfg  Config
	http *http.Client

	mu    sync.Mutex
	cache map[string][]byte
}

// NewClient creates a client for the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: make(map[string][]byte),
	}
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]byte)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, form)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	u := strings.TrimRight(c.cfg.Server, "/") + path
	key := method + " " + u
	var body io.Reader
	if form != nil {
		encoded := form.Encode()
		key += " " + encoded
		body = strings.NewReader(encoded)
	}

	if c.cfg.CacheEnabled {
		c.mu.Lock()
		cached, ok := c.cache[key]
		c.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("X-Authorization", "Token "+c.cfg.APIToken)
	}
	if c.cfg.HTTPUser != "" {
		req.SetBasicAuth(c.cfg.HTTPUser, c.cfg.HTTPPassword)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: %s", method, u, resp.Status)
	}

	if c.cfg.CacheEnabled {
		c.mu.Lock()
		c.cache[key] = data
		c.mu.Unlock()
	}
	return data, nil
}

// GetSkeleton downloads a skeleton with connectors and tags and converts
// it into a neuron. The name is resolved in a second request.
func (c *Client) GetSkeleton(ctx context.Context, skeletonID int64) (*neuron.Neuron, error) {
	path := fmt.Sprintf("/%d/%d/1/1/compact-skeleton", c.cfg.ProjectID, skeletonID)
	data, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching skeleton %d: %w", skeletonID, err)
	}

	n, err := parseCompactSkeleton(data)
	if err != nil {
		return nil, fmt.Errorf("skeleton %d: %w", skeletonID, err)
	}
	n.SkeletonID = skeletonID

	names, err := c.NeuronNames(ctx, skeletonID)
	if err == nil {
		n.Name = names[skeletonID]
	}
	if n.Name == "" {
		n.Name = fmt.Sprintf("neuron %d", skeletonID)
	}
	return n, nil
}

// NeuronNames resolves skeleton IDs to neuron names.
func (c *Client) NeuronNames(ctx context.Context, skeletonIDs ...int64) (map[int64]string, error) {
	form := url.Values{}
	for i, id := range skeletonIDs {
		form.Set(fmt.Sprintf("skids[%d]", i), strconv.FormatInt(id, 10))
	}
	data, err := c.postForm(ctx, fmt.Sprintf("/%d/skeleton/neuronnames", c.cfg.ProjectID), form)
	if err != nil {
		return nil, fmt.Errorf("fetching neuron names: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding neuron names: %w", err)
	}
	names := make(map[int64]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		names[id] = v
	}
	return names, nil
}

// SkeletonIDsByName finds the skeleton IDs of neurons whose name matches
// the query, via the annotation search endpoint.
func (c *Client) SkeletonIDsByName(ctx context.Context, name string) ([]int64, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("with_annotations", "false")
	data, err := c.postForm(ctx, fmt.Sprintf("/%d/annotations/query-targets", c.cfg.ProjectID), form)
	if err != nil {
		return nil, fmt.Errorf("searching skeletons by name %q: %w", name, err)
	}

	var result struct {
		Entities []struct {
			Type        string  `json:"type"`
			SkeletonIDs []int64 `json:"skeleton_ids"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding name search: %w", err)
	}

	var skids []int64
	for _, e := range result.Entities {
		if e.Type != "neuron" {
			continue
		}
		skids = append(skids, e.SkeletonIDs...)
	}
	return skids, nil
}

// parseCompactSkeleton decodes the compact-skeleton payload:
// [[id, parent, user, x, y, z, radius, confidence], ...] nodes,
// [[treenode, connector, relation, x, y, z], ...] connectors,
// {tag: [treenode ids]} tags.
func parseCompactSkeleton(data []byte) (*neuron.Neuron, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("decoding compact-skeleton: %w", err)
	}
	if len(parts) < 1 {
		return nil, fmt.Errorf("compact-skeleton payload has no node table")
	}

	var rawNodes [][]json.Number
	if err := json.Unmarshal(parts[0], &rawNodes); err != nil {
		return nil, fmt.Errorf("decoding node table: %w", err)
	}
	nodes := make([]neuron.Node, 0, len(rawNodes))
	for _, r := range rawNodes {
		if len(r) < 8 {
			return nil, fmt.Errorf("node row has %d fields, want 8", len(r))
		}
		id, _ := r[0].Int64()
		parent := neuron.NoParent
		if r[1].String() != "" && r[1].String() != "null" {
			parent, _ = r[1].Int64()
		}
		user, _ := r[2].Int64()
		x, _ := r[3].Float64()
		y, _ := r[4].Float64()
		z, _ := r[5].Float64()
		radius, _ := r[6].Float64()
		confidence, _ := r[7].Int64()
		nodes = append(nodes, neuron.Node{
			TreenodeID: id,
			ParentID:   parent,
			X:          x,
			Y:          y,
			Z:          z,
			Radius:     radius,
			Confidence: int(confidence),
			CreatorID:  int(user),
		})
	}

	n := &neuron.Neuron{
		Nodes: nodes,
		Tags:  make(map[string][]int64),
	}

	if len(parts) > 1 {
		var rawCns [][]json.Number
		if err := json.Unmarshal(parts[1], &rawCns); err != nil {
			return nil, fmt.Errorf("decoding connector table: %w", err)
		}
		for _, r := range rawCns {
			if len(r) < 6 {
				return nil, fmt.Errorf("connector row has %d fields, want 6", len(r))
			}
			tn, _ := r[0].Int64()
			cn, _ := r[1].Int64()
			rel, _ := r[2].Int64()
			x, _ := r[3].Float64()
			y, _ := r[4].Float64()
			z, _ := r[5].Float64()
			n.Connectors = append(n.Connectors, neuron.Connector{
				TreenodeID:  tn,
				ConnectorID: cn,
				Relation:    int(rel),
				X:           x,
				Y:           y,
				Z:           z,
			})
		}
	}

	if len(parts) > 2 {
		var tags map[string][]int64
		if err := json.Unmarshal(parts[2], &tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
		for tag, ids := range tags {
			n.Tags[tag] = ids
		}
	}

	return n, nil
}
