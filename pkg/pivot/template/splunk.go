package template

import (
	"fmt"
	"sort"
	"strings"
)

const defaultMaxResults = 1000

var splunkConnections = []string{"src_ip", "dest_ip", "user", "host"}

// SplunkSearch runs the pivot's Search field as is.
func SplunkSearch() Template {
	return Template{
		ID:          "search-splunk-plain",
		Name:        "Splunk: Search",
		Mode:        "all",
		Transport:   TransportSplunk,
		Connections: splunkConnections,
		Encodings:   DefaultEncodings,
		Build: func(in Input) (Query, error) {
			fields := in.Fields()
			max := intField(fields, "Max", defaultMaxResults)
			return Query{
				Transport: TransportSplunk,
				Search:    splunkSearch(stringField(fields, "Search", "*"), stringField(fields, "Time", ""), "", max),
				Size:      max,
			}, nil
		},
	}
}

// SplunkExpand searches for events sharing a connection value with the
// rows of the input pivot. Without cached input rows it matches nothing.
func SplunkExpand() Template {
	t := Template{
		ID:          "search-splunk-expand",
		Name:        "Splunk: Expand",
		Mode:        "expand",
		Transport:   TransportSplunk,
		Connections: splunkConnections,
		Encodings:   DefaultEncodings,
	}
	t.Build = func(in Input) (Query, error) {
		fields := in.Fields()
		max := intField(fields, "Max", defaultMaxResults)
		base := stringField(fields, "Search", "index=*")

		src, ok := inputIndex(fields)
		if !ok {
			return Query{}, fmt.Errorf("expand pivot %d: missing Input pivot", in.Index)
		}
		if src >= in.Index {
			return Query{}, fmt.Errorf("expand pivot %d: input pivot %d must come earlier", in.Index, src)
		}

		clause := expansionClause(in.Cache.Rows(src), t.ConnectionsFor(fields))
		if clause == "" {
			max = 0
		}
		return Query{
			Transport: TransportSplunk,
			Search:    splunkSearch(base, stringField(fields, "Time", ""), clause, max),
			Size:      max,
		}, nil
	}
	return t
}

func splunkSearch(base, earliest, clause string, max int) string {
	var sb strings.Builder
	sb.WriteString("search ")
	sb.WriteString(base)
	if earliest != "" {
		sb.WriteString(" earliest=")
		sb.WriteString(earliest)
	}
	if clause != "" {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	fmt.Fprintf(&sb, " | head %d", max)
	return sb.String()
}

// expansionClause ORs together every field="value" pair found in rows.
func expansionClause(rows []Row, connections []string) string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, field := range connections {
			v, ok := row[field]
			if !ok || v == nil {
				continue
			}
			s := fmt.Sprint(v)
			if s == "" {
				continue
			}
			term := fmt.Sprintf(`%s="%s"`, field, strings.ReplaceAll(s, `"`, `\"`))
			seen[term] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return ""
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return "(" + strings.Join(terms, " OR ") + ")"
}
