package service

import (
	"context"
	"encoding/json"
	"fmt"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/pkg/blobstore"
)

const datasetPrefix = "PivotApp/"

// Dataset is the uploaded form of a session graph: event to entity edges
// plus the records as node labels.
type Dataset struct {
	Name     string                `json:"name"`
	Type     string                `json:"type"`
	Graph    []DatasetEdge         `json:"graph"`
	Labels   []entity.EntityRecord `json:"labels"`
	Bindings DatasetBindings       `json:"bindings"`
}

type DatasetEdge struct {
	Source      string `json:"src"`
	Destination string `json:"dst"`
	Pivot       int    `json:"pivot"`
}

type DatasetBindings struct {
	SourceField      string `json:"sourceField"`
	DestinationField string `json:"destinationField"`
	IDField          string `json:"idField"`
}

type graphUploadService struct {
	store  *blobstore.Store
	logger logger.ILogger
}

func NewGraphUploadService(store *blobstore.Store, log logger.ILogger) GraphUploader {
	return &graphUploadService{store: store, logger: log}
}

// UploadGraph writes the enabled pivots of the active investigation as a
// gzip-compressed dataset and returns the dataset name.
func (s *graphUploadService) UploadGraph(ctx context.Context, app *entity.App) (string, error) {
	name := datasetPrefix + entity.NewID()
	dataset := BuildDataset(name, app)

	body, err := json.Marshal(dataset)
	if err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}

	err = s.store.Upload(ctx, name, body, blobstore.UploadOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"app": app.ID},
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("UPLOAD", "Uploaded dataset", map[string]interface{}{
		"dataset": name,
		"nodes":   len(dataset.Labels),
		"edges":   len(dataset.Graph),
		"bytes":   len(body),
	})
	return name, nil
}

// BuildDataset collects the results of every enabled pivot of the active
// investigation.
func BuildDataset(name string, app *entity.App) Dataset {
	ds := Dataset{
		Name:   name,
		Type:   "edgelist",
		Graph:  []DatasetEdge{},
		Labels: []entity.EntityRecord{},
		Bindings: DatasetBindings{
			SourceField:      "src",
			DestinationField: "dst",
			IDField:          "title",
		},
	}
	for _, ref := range app.Pivots() {
		p, ok := app.PivotsById[ref.ID]
		if !ok || !p.Enabled {
			continue
		}
		for _, rec := range p.Results {
			ds.Labels = append(ds.Labels, rec)
			for _, event := range rec.Events {
				ds.Graph = append(ds.Graph, DatasetEdge{
					Source:      event,
					Destination: rec.Title,
					Pivot:       rec.PivotIndex,
				})
			}
		}
	}
	return ds
}
