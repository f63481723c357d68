package service

import (
	"errors"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/pkg/pivot/palette"
)

// summarize builds the per-type histogram of records. Buckets keep the
// order in which their type first appears; the example is that first
// record. A type without a palette color keeps an empty color.
func summarize(records []entity.EntityRecord, log logger.ILogger) *entity.ResultSummary {
	buckets := make(map[string]int)
	summary := &entity.ResultSummary{
		Entities:    []entity.EntitySummary{},
		ResultCount: len(records),
	}

	for i, rec := range records {
		if b, ok := buckets[rec.Type]; ok {
			summary.Entities[b].Count++
			continue
		}
		buckets[rec.Type] = len(summary.Entities)
		summary.Entities = append(summary.Entities, entity.EntitySummary{
			Name:    rec.Type,
			Count:   1,
			Example: i,
		})
	}

	for i := range summary.Entities {
		example := records[summary.Entities[i].Example]
		color, err := palette.Lookup(example.Category)
		if err != nil {
			var lookupErr *palette.PaletteLookupError
			if errors.As(err, &lookupErr) && log != nil {
				log.Warn("SEARCH", "No palette color for entity type", map[string]interface{}{
					"type":     example.Type,
					"category": lookupErr.Category,
				})
			}
			continue
		}
		summary.Entities[i].Color = color
	}
	return summary
}
