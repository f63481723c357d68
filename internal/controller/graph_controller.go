package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"pivot-graph-be/internal/dto"
	"pivot-graph-be/internal/metrics"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/pkg/serverutils"
	"pivot-graph-be/internal/routes"
	"pivot-graph-be/internal/service"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/jsongraph/router"
	"pivot-graph-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type IGraphController interface {
	RegisterRoutes(r fiber.Router)
	OpenSession(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Call(ctx *fiber.Ctx) error
}

type graphController struct {
	sessions service.ISessionService
	deps     routes.Deps
	delivery service.SessionDelivery
	metrics  *metrics.Metrics
	logger   logger.ILogger
}

func NewGraphController(
	sessions service.ISessionService,
	deps routes.Deps,
	delivery service.SessionDelivery,
	m *metrics.Metrics,
	log logger.ILogger,
) IGraphController {
	return &graphController{
		sessions: sessions,
		deps:     deps,
		delivery: delivery,
		metrics:  m,
		logger:   log,
	}
}

func (c *graphController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/graph")
	h.Post("/sessions", c.OpenSession)
	h.Delete("/:session", c.CloseSession)
	h.Get("/:session", c.Get)
	h.Post("/:session/get", c.Get)
	h.Post("/:session/call", c.Call)
}

func (c *graphController) OpenSession(ctx *fiber.Ctx) error {
	var req dto.OpenSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sess, err := c.sessions.Open(ctx.UserContext(), req.UserID, req.Name)
	if err != nil {
		return err
	}
	c.metrics.SetActiveSessions(c.sessions.Count())

	res := dto.OpenSessionResponse{
		SessionID: sess.ID,
		UserID:    sess.App.CurrentUser.ID,
		Title:     sess.App.Title,
	}
	if user, err := sess.App.User(sess.App.CurrentUser.ID); err == nil {
		res.InvestigationID, _ = user.ActiveID()
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success open session", res))
}

func (c *graphController) CloseSession(ctx *fiber.Ctx) error {
	if _, err := c.session(ctx); err != nil {
		return err
	}
	c.sessions.Close(ctx.Params("session"))
	c.metrics.SetActiveSessions(c.sessions.Count())

	return ctx.JSON(serverutils.SuccessResponse("Success close session", nil))
}

// Get answers a path set query. The paths come from the request body, or
// from the "paths" query parameter on GET.
func (c *graphController) Get(ctx *fiber.Ctx) error {
	sess, err := c.session(ctx)
	if err != nil {
		return err
	}

	var req dto.GetRequest
	if ctx.Method() == fiber.MethodGet {
		req.Paths, err = queryPaths(ctx)
	} else {
		err = decode(ctx.Body(), &req)
	}
	if err != nil {
		return err
	}

	sess.Lock()
	res := c.router(sess).Get(ctx.UserContext(), req.Paths)
	sess.Unlock()

	return ctx.JSON(serverutils.SuccessResponse("Success get paths", res))
}

// Call invokes a function path. A failing call answers with an error value
// at the call path; successful deltas are also pushed to the session's
// websocket clients.
func (c *graphController) Call(ctx *fiber.Ctx) error {
	sess, err := c.session(ctx)
	if err != nil {
		return err
	}

	var req dto.CallRequest
	if err := decode(ctx.Body(), &req); err != nil {
		return err
	}

	sess.Lock()
	res, err := c.router(sess).Call(ctx.UserContext(), req.Path, router.Args(req.Args))
	sess.Unlock()

	if err != nil {
		c.logger.Warn("GraphController", "Call failed", map[string]interface{}{
			"session_id": sess.ID,
			"path":       req.Path.String(),
			"error":      err.Error(),
		})
		res = jsongraph.Response{}
		res.Add(jsongraph.NewPathValue(req.Path, jsongraph.NewErrorValue(err)))
		return ctx.JSON(serverutils.SuccessResponse("Call failed", res))
	}

	if c.delivery != nil {
		c.delivery.SendSession(sess.ID, dto.GraphDelta{Type: "delta", Path: req.Path, Response: res})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success call path", res))
}

func (c *graphController) router(sess *store.Session) *router.Router {
	return router.New(routes.AppRoutes(sess, c.deps), router.WithObserver(c.metrics))
}

func (c *graphController) session(ctx *fiber.Ctx) (*store.Session, error) {
	sess, err := c.sessions.Get(ctx.Params("session"))
	if errors.Is(err, service.ErrSessionNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return sess, err
}

// queryPaths reads the JSON path set list of the "paths" query parameter.
func queryPaths(ctx *fiber.Ctx) ([]jsongraph.Path, error) {
	raw := ctx.Query("paths")
	if raw == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing paths query parameter")
	}
	var paths []jsongraph.Path
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&paths); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid paths query parameter: "+err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid paths query parameter: trailing data")
	}
	if len(paths) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "paths query parameter has no paths")
	}
	return paths, nil
}

// decode keeps numbers as json.Number so integer arguments and keys survive.
func decode(raw []byte, req interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return serverutils.ValidateRequest(req)
}
