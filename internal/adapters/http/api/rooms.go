// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// RoomsHandler handles room lifecycle requests.
type RoomsHandler struct {
	deps Dependencies
}

// NewRoomsHandler creates a new rooms handler.
func NewRoomsHandler(deps Dependencies) *RoomsHandler {
	return &RoomsHandler{deps: deps}
}

// createRoomRequest mirrors the body of POST /rooms.
type createRoomRequest struct {
	Judge string `json:"judge"`
}

func (c createRoomRequest) validate() error {
	if strings.TrimSpace(c.Judge) == "" {
		return errors.New("missing judge")
	}
	return nil
}

// joinRoomRequest mirrors the body of POST /rooms/{id}/join.
type joinRoomRequest struct {
	Judge string `json:"judge"`
}

func (j joinRoomRequest) validate() error {
	if strings.TrimSpace(j.Judge) == "" {
		return errors.New("missing judge")
	}
	return nil
}

// HandleCreateRoom handles POST /rooms requests.
func (h *RoomsHandler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_room"
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	room, err := h.deps.CreateRoom(r.Context(), req.Judge)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// HandleGetRoom handles GET /rooms/{id} requests.
func (h *RoomsHandler) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_room"
	room, err := h.deps.GetRoom(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// HandleJoinRoom handles POST /rooms/{id}/join requests. Joining with a
// name that is already on the roster succeeds without changing anything.
func (h *RoomsHandler) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	const op = "api.join_room"
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	room, err := h.deps.JoinRoom(r.Context(), r.PathValue("id"), req.Judge)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, room)
}
