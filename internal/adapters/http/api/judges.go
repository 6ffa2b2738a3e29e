// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// JudgesHandler handles roster management requests.
type JudgesHandler struct {
	deps Dependencies
}

// NewJudgesHandler creates a new judges handler.
func NewJudgesHandler(deps Dependencies) *JudgesHandler {
	return &JudgesHandler{deps: deps}
}

// addJudgeRequest mirrors the body of POST /rooms/{id}/judges.
type addJudgeRequest struct {
	Judge string `json:"judge"`
}

func (a addJudgeRequest) validate() error {
	if strings.TrimSpace(a.Judge) == "" {
		return errors.New("missing judge")
	}
	return nil
}

// HandleAddJudge handles POST /rooms/{id}/judges requests.
func (h *JudgesHandler) HandleAddJudge(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_judge"
	var req addJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	room, err := h.deps.AddJudge(r.Context(), r.PathValue("id"), req.Judge)
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// HandleRemoveJudge handles DELETE /rooms/{id}/judges/{name} requests.
// Removal drops the judge from the roster but keeps submitted scores; a
// confirm=true query parameter is required to guard against accidents.
func (h *JudgesHandler) HandleRemoveJudge(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_judge"
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm_required",
			NewKind(op, errors.New("confirm=true required")))
		return
	}
	room, err := h.deps.RemoveJudge(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, room)
}
