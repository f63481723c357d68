package service

import (
	"context"
	"errors"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/internal/repository/memory"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found")

const defaultUserName = "admin"

type ISessionService interface {
	// Open starts a session for userID, loading the user and the active
	// investigation from storage. An empty or unknown userID gets a new
	// user with one fresh investigation.
	Open(ctx context.Context, userID, userName string) (*store.Session, error)
	Get(sessionID string) (*store.Session, error)
	Close(sessionID string)
	Count() int
}

type sessionService struct {
	sessions       *memory.SessionRepository
	loaders        contract.GraphLoaderFactory
	investigations IInvestigationService
	title          string
	viewerURL      string
	logger         logger.ILogger
}

func NewSessionService(
	sessions *memory.SessionRepository,
	loaders contract.GraphLoaderFactory,
	investigations IInvestigationService,
	title string,
	viewerURL string,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessions:       sessions,
		loaders:        loaders,
		investigations: investigations,
		title:          title,
		viewerURL:      viewerURL,
		logger:         log,
	}
}

func (s *sessionService) Open(ctx context.Context, userID, userName string) (*store.Session, error) {
	app := entity.NewApp(s.title, s.viewerURL)
	sess := store.NewSession(entity.NewID(), app)
	loader := s.loaders.ForApp(app)

	var user *entity.User
	if userID != "" {
		users, err := loader.LoadUsersById(ctx, []string{userID})
		var missing *jsongraph.MissingReferenceError
		switch {
		case err == nil:
			user = users[0]
		case errors.As(err, &missing):
			s.logger.Info("SESSION", "Unknown user, starting fresh", map[string]interface{}{"user_id": userID})
		default:
			return nil, err
		}
	}

	if user == nil {
		if userName == "" {
			userName = defaultUserName
		}
		user = entity.NewUser(userName)
		if userID != "" {
			user.ID = userID
		}
		app.PutUser(user)
	}
	app.CurrentUser = jsongraph.NewRef(jsongraph.UsersByID, user.ID)

	// Drop stored investigations that no longer exist until one loads.
	for {
		active, ok := user.ActiveID()
		if !ok {
			break
		}
		err := s.loadActive(ctx, loader, active)
		if err == nil {
			break
		}
		var missing *jsongraph.MissingReferenceError
		if !errors.As(err, &missing) {
			return nil, err
		}
		user.RemoveInvestigations([]string{active})
	}
	if _, ok := user.ActiveID(); !ok {
		if _, err := s.investigations.Create(ctx, sess, user.ID); err != nil {
			return nil, err
		}
	}

	s.sessions.Save(sess)
	s.logger.Info("SESSION", "Session opened", map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    user.ID,
	})
	return sess, nil
}

func (s *sessionService) loadActive(ctx context.Context, loader contract.GraphLoader, id string) error {
	invs, err := loader.LoadInvestigationsById(ctx, []string{id})
	if err != nil {
		return err
	}
	_, err = loader.LoadPivotsById(ctx, invs[0].PivotIDs())
	return err
}

func (s *sessionService) Get(sessionID string) (*store.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Close(sessionID string) {
	s.sessions.Delete(sessionID)
	s.logger.Info("SESSION", "Session closed", map[string]interface{}{"session_id": sessionID})
}

func (s *sessionService) Count() int {
	return s.sessions.Count()
}
