package store

import (
	"sync"
	"time"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/pkg/flow"
	"pivot-graph-be/pkg/pivot/template"
)

// Session is one client's working memory: its graph, the rows of earlier
// searches keyed by pivot position, and the sequencer for dataset uploads.
type Session struct {
	ID        string
	App       *entity.App
	Cache     *template.Cache
	Uploads   *flow.Latest
	CreatedAt time.Time

	mu sync.Mutex
}

func NewSession(id string, app *entity.App) *Session {
	return &Session{
		ID:        id,
		App:       app,
		Cache:     template.NewCache(),
		Uploads:   &flow.Latest{},
		CreatedAt: time.Now(),
	}
}

// Lock serialises mutations of the session graph.
func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}
