package service

import (
	"context"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/pkg/pivot/shaper"
	"pivot-graph-be/pkg/pivot/template"
)

// SearchExecutor runs queries against one search back-end.
type SearchExecutor interface {
	Transport() string
	Execute(ctx context.Context, q template.Query) ([]template.Row, error)
}

// ResultShaper turns raw rows into entity records.
type ResultShaper interface {
	Shape(ctx context.Context, rows []template.Row, sc shaper.Context) ([]entity.EntityRecord, error)
}

// GraphUploader publishes the session graph as a dataset and returns its
// name.
type GraphUploader interface {
	UploadGraph(ctx context.Context, app *entity.App) (string, error)
}
