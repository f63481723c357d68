// Package shaper turns raw search rows into entity records.
package shaper

import (
	"context"
	"fmt"
	"slices"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/pkg/pivot/template"
)

const eventType = "EventID"

// Context tells the shaper which pivot the rows came from and how to read
// them.
type Context struct {
	PivotIndex  int
	Connections []string
	Encodings   map[string]string
}

// FieldShaper emits one event record per row plus one record per distinct
// connection value. Entities seen in several rows are merged and keep the
// list of events they appeared in.
type FieldShaper struct{}

func NewFieldShaper() *FieldShaper {
	return &FieldShaper{}
}

func (s *FieldShaper) Shape(ctx context.Context, rows []template.Row, sc Context) ([]entity.EntityRecord, error) {
	records := make([]entity.EntityRecord, 0, len(rows))
	entities := make(map[string]int)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		title := eventTitle(row, sc.PivotIndex, i)
		records = append(records, entity.EntityRecord{
			Title:      title,
			Type:       eventType,
			Category:   category(sc.Encodings, eventType),
			PivotIndex: sc.PivotIndex,
			Attributes: row,
		})

		for _, field := range connectionsOf(row, sc.Connections) {
			v, ok := row[field]
			if !ok || v == nil {
				continue
			}
			value := fmt.Sprint(v)
			if value == "" {
				continue
			}

			key := field + "|" + value
			if at, seen := entities[key]; seen {
				if !slices.Contains(records[at].Events, title) {
					records[at].Events = append(records[at].Events, title)
				}
				continue
			}
			entities[key] = len(records)
			records = append(records, entity.EntityRecord{
				Title:      value,
				Type:       field,
				Category:   category(sc.Encodings, field),
				PivotIndex: sc.PivotIndex,
				Events:     []string{title},
			})
		}
	}
	return records, nil
}

func eventTitle(row template.Row, pivot, i int) string {
	if v, ok := row[eventType]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%d.%d", pivot, i)
}

// connectionsOf expands the "*" wildcard into every row field.
func connectionsOf(row template.Row, connections []string) []string {
	if !slices.Contains(connections, "*") {
		return connections
	}
	out := make([]string, 0, len(row))
	for k := range row {
		if k != eventType {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// category falls back to the type itself, which the palette may not know.
func category(encodings map[string]string, typ string) string {
	if c, ok := encodings[typ]; ok {
		return c
	}
	return typ
}
