// Package template turns a pivot's fields into a back-end query.
package template

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Transports a template can target.
const (
	TransportSplunk        = "Splunk"
	TransportElasticsearch = "Elasticsearch"
	TransportHTTP          = "HTTP"
)

var ErrUnknownMode = errors.New("unknown pivot mode")

// Request is one HTTP lookup of an HTTP-transport query.
type Request struct {
	URL    string `json:"url"`
	Params Row    `json:"params"`
}

// Query is the back-end specific search a template builds. Only the part
// matching Transport is set.
type Query struct {
	Transport string

	// Splunk
	Search string

	// Elasticsearch
	Index string
	Body  map[string]any

	// HTTP
	Requests []Request

	Size int
}

// Input is everything a template may read while building a query.
type Input struct {
	// Fields of every pivot of the investigation, in list order.
	Pivots []map[string]any
	// Position of the pivot being searched.
	Index int
	// Rows of earlier searches. May be nil.
	Cache *Cache
}

// Fields returns the searched pivot's fields.
func (in Input) Fields() map[string]any {
	if in.Index < 0 || in.Index >= len(in.Pivots) {
		return map[string]any{}
	}
	return in.Pivots[in.Index]
}

// Template describes one pivot mode.
type Template struct {
	ID        string
	Name      string
	Mode      string
	Transport string
	// Connections are the row fields extracted as entities when the pivot
	// does not name its own.
	Connections []string
	// Encodings maps an entity type to its palette category.
	Encodings map[string]string
	Build     func(Input) (Query, error)
}

type Registry struct {
	byMode map[string]Template
}

func NewRegistry(templates ...Template) *Registry {
	r := &Registry{byMode: make(map[string]Template, len(templates))}
	for _, t := range templates {
		r.byMode[t.Mode] = t
	}
	return r
}

// Get returns the template registered for mode.
func (r *Registry) Get(mode string) (Template, error) {
	t, ok := r.byMode[mode]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return t, nil
}

func (r *Registry) Modes() []string {
	out := make([]string, 0, len(r.byMode))
	for m := range r.byMode {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Default returns the built-in templates.
func Default() *Registry {
	return NewRegistry(
		SplunkSearch(),
		SplunkExpand(),
		ElasticsearchSearch(),
		HTTPExpand(),
	)
}

// DefaultEncodings maps well-known entity types to palette categories.
var DefaultEncodings = map[string]string{
	"EventID":   "event",
	"src_ip":    "ip",
	"dest_ip":   "ip",
	"ip":        "ip",
	"user":      "user",
	"src_user":  "user",
	"host":      "host",
	"dest_host": "host",
	"file":      "file",
	"md5":       "hash",
	"sha256":    "hash",
	"url":       "url",
	"domain":    "domain",
	"process":   "process",
	"alert":     "alert",
	"mac":       "mac",
	"port":      "port",
}

// ConnectionsFor returns the entity fields a pivot asks for in its Links
// field, falling back to the template's defaults.
func (t Template) ConnectionsFor(fields map[string]any) []string {
	if links := stringList(fields["Links"]); len(links) > 0 {
		return links
	}
	return t.Connections
}

func stringField(fields map[string]any, name, fallback string) string {
	v, ok := fields[name]
	if !ok || v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}

func intField(fields map[string]any, name string, fallback int) int {
	switch v := fields[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// stringList accepts "a, b", ["a", "b"] and []string.
func stringList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			raw = append(raw, fmt.Sprint(item))
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// inputIndex reads the position of the pivot whose rows seed this one. It
// accepts 2, "2" and "Pivot 2".
func inputIndex(fields map[string]any) (int, bool) {
	switch v := fields["Input"].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "Pivot"))
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}
