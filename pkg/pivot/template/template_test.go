package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := Default()

	tpl, err := r.Get("all")
	require.NoError(t, err)
	assert.Equal(t, TransportSplunk, tpl.Transport)

	tpl, err = r.Get("es-search")
	require.NoError(t, err)
	assert.Equal(t, TransportElasticsearch, tpl.Transport)

	_, err = r.Get("nope")
	assert.True(t, errors.Is(err, ErrUnknownMode))

	assert.Equal(t, []string{"all", "es-search", "expand", "http-expand"}, r.Modes())
}

func TestSplunkSearch(t *testing.T) {
	q, err := SplunkSearch().Build(Input{
		Pivots: []map[string]any{{"Search": "index=main error", "Max": float64(50), "Time": "-7d"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "search index=main error earliest=-7d | head 50", q.Search)
	assert.Equal(t, 50, q.Size)
}

func TestSplunkExpandUsesCachedRows(t *testing.T) {
	cache := NewCache()
	cache.Put(0, []Row{
		{"src_ip": "10.0.0.1", "user": "bob"},
		{"src_ip": "10.0.0.1"},
	})

	in := Input{
		Pivots: []map[string]any{
			{"Search": "index=main"},
			{"Mode": "expand", "Input": "Pivot 0", "Links": "src_ip, user"},
		},
		Index: 1,
		Cache: cache,
	}

	q, err := SplunkExpand().Build(in)
	require.NoError(t, err)
	assert.Equal(t, `search index=* (src_ip="10.0.0.1" OR user="bob") | head 1000`, q.Search)
}

func TestSplunkExpandWithoutCacheMatchesNothing(t *testing.T) {
	in := Input{
		Pivots: []map[string]any{{}, {"Input": float64(0)}},
		Index:  1,
	}

	q, err := SplunkExpand().Build(in)
	require.NoError(t, err)
	assert.Equal(t, "search index=* | head 0", q.Search)
	assert.Zero(t, q.Size)
}

func TestSplunkExpandRejectsForwardInput(t *testing.T) {
	_, err := SplunkExpand().Build(Input{
		Pivots: []map[string]any{{"Input": 0}},
		Index:  0,
	})
	assert.Error(t, err)
}

func TestElasticsearchSearch(t *testing.T) {
	q, err := ElasticsearchSearch().Build(Input{
		Pivots: []map[string]any{{
			"Index":      "logs-*",
			"Query":      `{"match":{"user":"bob"}}`,
			"Time":       float64(3),
			"Links":      []any{"src_ip", "user"},
			"Attributes": "bytes, status",
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, TransportElasticsearch, q.Transport)
	assert.Equal(t, "logs-*", q.Index)
	assert.Equal(t, []string{"src_ip", "user", "bytes", "status"}, q.Body["_source"])

	query := q.Body["query"].(map[string]any)["bool"].(map[string]any)
	assert.Equal(t, map[string]any{"match": map[string]any{"user": "bob"}}, query["must"])
}

func TestElasticsearchBadQuery(t *testing.T) {
	_, err := ElasticsearchSearch().Build(Input{Pivots: []map[string]any{{"Query": "{"}}})
	assert.Error(t, err)
}

func TestExpandURLs(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		rows     []Row
		want     []Request
	}{
		{
			name:     "constant",
			endpoint: "http://www.google.com",
			rows:     []Row{{"x": 1}, {"x": 3}},
			want: []Request{
				{URL: "http://www.google.com", Params: Row{"x": 1}},
				{URL: "http://www.google.com", Params: Row{"x": 3}},
			},
		},
		{
			name:     "row params",
			endpoint: "http://www.google.com/?v={x}",
			rows:     []Row{{"x": 1}, {"x": 3}},
			want: []Request{
				{URL: "http://www.google.com/?v=1", Params: Row{"x": 1}},
				{URL: "http://www.google.com/?v=3", Params: Row{"x": 3}},
			},
		},
		{
			name:     "unknown placeholder kept",
			endpoint: "http://h/{y}",
			rows:     []Row{{"x": "z"}},
			want:     []Request{{URL: "http://h/{y}", Params: Row{"x": "z"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandURLs(tt.endpoint, tt.rows))
		})
	}
}

func TestHTTPExpandReadsInputPivot(t *testing.T) {
	cache := NewCache()
	cache.Put(1, []Row{{"y": "z"}})

	q, err := HTTPExpand().Build(Input{
		Pivots: []map[string]any{{}, {}, {"Endpoint": "http://www.google.com/?v={y}", "Input": 1}},
		Index:  2,
		Cache:  cache,
	})
	require.NoError(t, err)
	assert.Equal(t, []Request{{URL: "http://www.google.com/?v=z", Params: Row{"y": "z"}}}, q.Requests)
}

func TestCacheShiftAndNil(t *testing.T) {
	var nilCache *Cache
	assert.Nil(t, nilCache.Rows(0))
	nilCache.Put(0, []Row{{}})
	assert.Zero(t, nilCache.Len())

	c := NewCache()
	c.Put(0, []Row{{"n": 0}})
	c.Put(1, []Row{{"n": 1}})
	c.Put(2, []Row{{"n": 2}})

	c.Shift(1, 1)
	assert.Equal(t, 0, c.Rows(0)[0]["n"])
	assert.Nil(t, c.Rows(1))
	assert.Equal(t, 1, c.Rows(2)[0]["n"])
	assert.Equal(t, 2, c.Rows(3)[0]["n"])

	c.Shift(2, -1)
	assert.Equal(t, 2, c.Rows(2)[0]["n"])
	assert.Equal(t, 2, c.Len())
}
