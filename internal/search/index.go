package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

const mapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "code":          {"type": "keyword"},
      "name":          {"type": "text"},
      "expiry_date":   {"type": "date", "format": "yyyy-MM-dd"},
      "lot":           {"type": "keyword"},
      "quantity":      {"type": "integer"},
      "registered_at": {"type": "date"},
      "section":       {"type": "keyword"}
    }
  }
}`

// Index keeps a product index in Elasticsearch. The store stays the source of
// truth; the index only answers fuzzy lookups.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

// EnsureIndex creates the index with its mapping unless it exists.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.ES.Indices.Exists([]string{ix.Name}, ix.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = ix.ES.Indices.Create(ix.Name,
		ix.ES.Indices.Create.WithContext(ctx),
		ix.ES.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	return responseError("create index", res)
}

func (ix *Index) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("search: marshal: %w", err)
	}
	res, err := ix.ES.Index(ix.Name, bytes.NewReader(body),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	return responseError("index", res)
}

// RemoveProducts deletes documents by id. Missing documents are not an error.
func (ix *Index) RemoveProducts(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		res, err := ix.ES.Delete(ix.Name, p.ID.String(), ix.ES.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("search: delete: %w", err)
		}
		if res.StatusCode == http.StatusNotFound {
			res.Body.Close()
			continue
		}
		if err := responseError("delete", res); err != nil {
			return err
		}
	}
	return nil
}

// Search runs a fuzzy match on name and an exact match on code, limited to
// sections when sections is non-nil.
func (ix *Index) Search(ctx context.Context, query string, sections []string, size int) ([]models.Product, error) {
	if sections != nil && len(sections) == 0 {
		return []models.Product{}, nil
	}

	boolQuery := map[string]any{
		"must": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "code"},
				"fuzziness": "AUTO",
				"lenient":   true,
			},
		},
	}
	if sections != nil {
		boolQuery["filter"] = map[string]any{"terms": map[string]any{"section": sections}}
	}
	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}

	out := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		out[i] = hit.Source
	}
	return out, nil
}

func responseError(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search: %s: %s: %s", op, res.Status(), msg)
	}
	return nil
}
