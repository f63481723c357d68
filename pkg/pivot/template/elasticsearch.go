package template

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ElasticsearchSearch runs the pivot's Query field, a JSON query DSL
// document, against Index.
func ElasticsearchSearch() Template {
	t := Template{
		ID:          "search-es-plain",
		Name:        "Elasticsearch: Search",
		Mode:        "es-search",
		Transport:   TransportElasticsearch,
		Connections: []string{"*"},
		Encodings:   DefaultEncodings,
	}
	t.Build = func(in Input) (Query, error) {
		fields := in.Fields()
		max := intField(fields, "Max", defaultMaxResults)

		var query map[string]any
		raw := stringField(fields, "Query", `{"match_all":{}}`)
		if err := json.Unmarshal([]byte(raw), &query); err != nil {
			return Query{}, fmt.Errorf("es-search pivot %d: parse Query: %w", in.Index, err)
		}

		body := map[string]any{"query": withDayRange(query, intField(fields, "Time", 0))}

		links := t.ConnectionsFor(fields)
		attributes := stringList(fields["Attributes"])
		if len(links) > 1 && !slices.Contains(links, "*") &&
			len(attributes) > 1 && !slices.Contains(attributes, "*") {
			body["_source"] = append(slices.Clone(links), attributes...)
		}

		return Query{
			Transport: TransportElasticsearch,
			Index:     stringField(fields, "Index", "*"),
			Body:      body,
			Size:      max,
		}, nil
	}
	return t
}

// withDayRange restricts query to the last days days of @timestamp.
func withDayRange(query map[string]any, days int) map[string]any {
	if days <= 0 {
		return query
	}
	return map[string]any{
		"bool": map[string]any{
			"must": query,
			"filter": map[string]any{
				"range": map[string]any{
					"@timestamp": map[string]any{"gte": fmt.Sprintf("now-%dd", days)},
				},
			},
		},
	}
}
