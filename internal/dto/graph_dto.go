package dto

import (
	"pivot-graph-be/pkg/jsongraph"
)

type OpenSessionRequest struct {
	UserID string `json:"user_id" validate:"omitempty,max=64"`
	Name   string `json:"name" validate:"omitempty,max=128"`
}

type OpenSessionResponse struct {
	SessionID       string `json:"session_id"`
	UserID          string `json:"user_id"`
	InvestigationID string `json:"investigation_id,omitempty"`
	Title           string `json:"title"`
}

// GetRequest asks for the values under one or more path sets.
type GetRequest struct {
	Paths []jsongraph.Path `json:"paths" validate:"required,min=1"`
}

// CallRequest invokes the function at Path with positional arguments.
type CallRequest struct {
	Path jsongraph.Path `json:"path" validate:"required,min=1"`
	Args []any          `json:"args"`
}

// GraphDelta is pushed to a session's websocket clients after a call.
type GraphDelta struct {
	Type     string             `json:"type"`
	Path     jsongraph.Path     `json:"path"`
	Response jsongraph.Response `json:"response"`
}
