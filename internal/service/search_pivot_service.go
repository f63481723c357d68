package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/pkg/events"
	"pivot-graph-be/pkg/flow"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/pivot/shaper"
	"pivot-graph-be/pkg/pivot/template"
	"pivot-graph-be/pkg/store"
)

var searchTracer = otel.Tracer("pivot-graph.search")

type ISearchPivotService interface {
	// SearchPivot runs the pivot at index of the investigation. A negative
	// index selects the last pivot.
	SearchPivot(ctx context.Context, sess *store.Session, investigationID string, index int) (*SearchResult, error)
	// UploadGraph publishes the session graph and points the app url at the
	// dataset. A superseded upload leaves the url unchanged.
	UploadGraph(ctx context.Context, sess *store.Session) (string, error)
}

type SearchResult struct {
	Index int
	Pivot *entity.Pivot
}

type searchPivotService struct {
	loaders   contract.GraphLoaderFactory
	templates *template.Registry
	executors map[string]SearchExecutor
	shaper    ResultShaper
	uploader  GraphUploader
	viewerURL string
	publisher IPublisherService
	logger    logger.ILogger
}

func NewSearchPivotService(
	loaders contract.GraphLoaderFactory,
	templates *template.Registry,
	executors []SearchExecutor,
	resultShaper ResultShaper,
	uploader GraphUploader,
	viewerURL string,
	publisher IPublisherService,
	log logger.ILogger,
) ISearchPivotService {
	byTransport := make(map[string]SearchExecutor, len(executors))
	for _, e := range executors {
		byTransport[e.Transport()] = e
	}
	return &searchPivotService{
		loaders:   loaders,
		templates: templates,
		executors: byTransport,
		shaper:    resultShaper,
		uploader:  uploader,
		viewerURL: viewerURL,
		publisher: publisher,
		logger:    log,
	}
}

func (s *searchPivotService) SearchPivot(ctx context.Context, sess *store.Session, investigationID string, index int) (*SearchResult, error) {
	loader := s.loaders.ForApp(sess.App)

	invs, err := loader.LoadInvestigationsById(ctx, []string{investigationID})
	if err != nil {
		return nil, err
	}
	inv := invs[0]
	if index < 0 {
		index = len(inv.Pivots) - 1
	}
	if index < 0 || index >= len(inv.Pivots) {
		return nil, &jsongraph.InvalidArgumentsError{
			Reason: fmt.Sprintf("pivot index %d out of range [0, %d)", index, len(inv.Pivots)),
		}
	}

	pivots, err := loader.LoadPivotsById(ctx, inv.PivotIDs())
	if err != nil {
		return nil, err
	}
	pivot := pivots[index]
	pivot.Enabled = true

	fail := func(err error) (*SearchResult, error) {
		return nil, &OperationError{Op: "searchPivot", EntityID: pivot.ID, Err: err}
	}

	tmpl, err := s.templates.Get(pivot.Mode())
	if err != nil {
		return fail(err)
	}
	executor, ok := s.executors[tmpl.Transport]
	if !ok {
		return fail(&TemplateTransportMismatchError{
			Mode:      tmpl.Mode,
			Transport: tmpl.Transport,
			Available: s.transports(),
		})
	}

	input := template.Input{
		Pivots: make([]map[string]any, len(pivots)),
		Index:  index,
		Cache:  sess.Cache,
	}
	for i, p := range pivots {
		input.Pivots[i] = p.Fields.Map()
	}
	query, err := tmpl.Build(input)
	if err != nil {
		return fail(err)
	}

	s.logger.Info("SEARCH", "Executing pivot search", map[string]interface{}{
		"pivot_id":  pivot.ID,
		"mode":      tmpl.Mode,
		"transport": tmpl.Transport,
		"search":    query.Search,
	})
	spanCtx, span := searchTracer.Start(ctx, "pivot.search",
		trace.WithAttributes(
			attribute.String("pivot.id", pivot.ID),
			attribute.String("pivot.mode", tmpl.Mode),
			attribute.String("pivot.transport", tmpl.Transport),
		),
	)
	rows, err := executor.Execute(spanCtx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		span.End()
		return fail(err)
	}
	span.SetAttributes(attribute.Int("pivot.rows", len(rows)))
	span.End()
	sess.Cache.Put(index, rows)

	records, err := s.shaper.Shape(ctx, rows, shaper.Context{
		PivotIndex:  index,
		Connections: tmpl.ConnectionsFor(input.Fields()),
		Encodings:   tmpl.Encodings,
	})
	if err != nil {
		return fail(err)
	}

	pivot.ResultCount = len(rows)
	pivot.Results = records
	pivot.ResultSummary = summarize(records, s.logger)

	s.publish(ctx, events.NewGraphEvent(events.PivotSearched, sess.ID, map[string]interface{}{
		"investigation_id": inv.ID,
		"pivot_id":         pivot.ID,
		"result_count":     pivot.ResultCount,
	}))
	return &SearchResult{Index: index, Pivot: pivot}, nil
}

func (s *searchPivotService) UploadGraph(ctx context.Context, sess *store.Session) (string, error) {
	if s.uploader == nil {
		return sess.App.URL, nil
	}

	name, err := flow.Do(ctx, sess.Uploads, func(ctx context.Context) (string, error) {
		return s.uploader.UploadGraph(ctx, sess.App)
	})
	if errors.Is(err, flow.ErrSuperseded) {
		return sess.App.URL, nil
	}
	if err != nil {
		return "", &OperationError{Op: "uploadGraph", EntityID: sess.App.ID, Err: err}
	}

	sess.App.URL = datasetURL(s.viewerURL, name)
	s.publish(ctx, events.NewGraphEvent(events.GraphUploaded, sess.ID, map[string]interface{}{
		"dataset": name,
		"url":     sess.App.URL,
	}))
	return sess.App.URL, nil
}

func (s *searchPivotService) transports() []string {
	out := make([]string, 0, len(s.executors))
	for t := range s.executors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (s *searchPivotService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("SEARCH", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func datasetURL(viewer, dataset string) string {
	sep := "?"
	if strings.Contains(viewer, "?") {
		sep = "&"
	}
	return viewer + sep + "dataset=" + dataset
}
