package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	lastBody string
	exists   bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.lastBody = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/products":
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"code":"7891000","name":"Milk","expiry_date":"2025-06-01","quantity":2,"section":"DAIRY"}}]}}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected"}`)
	}
}

func (f *fakeES) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newIndex(t *testing.T, fake *fakeES) *Index {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{URL: srv.URL})
	require.NoError(t, err)
	return &Index{ES: client, Name: "products"}
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	fake := &fakeES{}
	ix := newIndex(t, fake)

	require.NoError(t, ix.EnsureIndex(context.Background()))
	assert.Contains(t, fake.seen(), "PUT /products")
}

func TestEnsureIndex_SkipsExisting(t *testing.T) {
	fake := &fakeES{exists: true}
	ix := newIndex(t, fake)

	require.NoError(t, ix.EnsureIndex(context.Background()))
	assert.NotContains(t, fake.seen(), "PUT /products")
}

func TestIndexAndRemove(t *testing.T) {
	fake := &fakeES{}
	ix := newIndex(t, fake)
	p := models.Product{ID: uuid.New(), Code: "7891000", Name: "Milk", ExpiryDate: "2025-06-01", Quantity: 2, Section: "DAIRY"}

	require.NoError(t, ix.IndexProduct(context.Background(), p))
	assert.Contains(t, fake.seen(), "PUT /products/_doc/"+p.ID.String())

	require.NoError(t, ix.RemoveProducts(context.Background(), []models.Product{p}))
}

func TestSearch_FiltersSections(t *testing.T) {
	fake := &fakeES{}
	ix := newIndex(t, fake)

	got, err := ix.Search(context.Background(), "milk", []string{"DAIRY"}, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Milk", got[0].Name)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.lastBody), &body))
	assert.Contains(t, fake.lastBody, `"terms":{"section":["DAIRY"]}`)
	assert.EqualValues(t, 20, body["size"])
}

func TestSearch_EmptyScope(t *testing.T) {
	fake := &fakeES{}
	ix := newIndex(t, fake)
	before := len(fake.seen())

	got, err := ix.Search(context.Background(), "milk", []string{}, 20)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, fake.seen(), before)
}
