package template

import (
	"fmt"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// HTTPExpand issues one request per row of the input pivot. {name}
// placeholders in Endpoint are filled from the row.
func HTTPExpand() Template {
	return Template{
		ID:          "http-expand",
		Name:        "HTTP: Expand",
		Mode:        "http-expand",
		Transport:   TransportHTTP,
		Connections: []string{"url", "domain", "ip"},
		Encodings:   DefaultEncodings,
		Build: func(in Input) (Query, error) {
			fields := in.Fields()
			endpoint := stringField(fields, "Endpoint", "")
			if endpoint == "" {
				return Query{}, fmt.Errorf("http-expand pivot %d: missing Endpoint", in.Index)
			}
			src, ok := inputIndex(fields)
			if !ok {
				return Query{}, fmt.Errorf("http-expand pivot %d: missing Input pivot", in.Index)
			}
			requests := ExpandURLs(endpoint, in.Cache.Rows(src))
			return Query{Transport: TransportHTTP, Requests: requests, Size: len(requests)}, nil
		},
	}
}

// ExpandURLs builds the requests for endpoint over rows.
func ExpandURLs(endpoint string, rows []Row) []Request {
	out := make([]Request, 0, len(rows))
	for _, row := range rows {
		url := placeholder.ReplaceAllStringFunc(endpoint, func(m string) string {
			name := placeholder.FindStringSubmatch(m)[1]
			if v, ok := row[name]; ok {
				return fmt.Sprint(v)
			}
			return m
		})
		out = append(out, Request{URL: url, Params: row})
	}
	return out
}
