// Package search keeps the product index in Elasticsearch and queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
)

// Document is the indexed projection of a product.
type Document struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	IsActive    bool   `json:"is_active"`
}

// Index is what the catalog needs from a search backend.
type Index interface {
	IndexProduct(ctx context.Context, doc Document) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

// NewClient connects and checks the cluster answers Info.
func NewClient(cfg Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	return &Client{es: es, index: cfg.Index}, nil
}

func (c *Client) IndexProduct(ctx context.Context, doc Document) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es: encode: %w", err)
	}
	res, err := c.es.Index(c.index, &buf,
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
		c.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("es: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index: %s", res.Status())
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	res, err := c.es.Delete(c.index, strconv.FormatUint(uint64(id), 10),
		c.es.Delete.WithContext(ctx),
		c.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("es: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi_match over name and description and returns the
// matching product ids in score order.
func (c *Client) Search(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
		"from":    from,
		"size":    size,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return r.Hits.Total.Value, ids, nil
}
