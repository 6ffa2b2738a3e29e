// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/encore/internal/domain/model"
)

// ScoresHandler handles score submission requests.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// submitScoreRequest mirrors the body of POST /rooms/{id}/scores.
type submitScoreRequest struct {
	ContestantID string             `json:"contestant_id"`
	RoundID      int                `json:"round_id"`
	Judge        string             `json:"judge"`
	Scores       map[string]float64 `json:"scores"`
}

func (s submitScoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.ContestantID) == "":
		return errors.New("missing contestant_id")
	case s.RoundID == 0:
		return errors.New("missing round_id")
	case strings.TrimSpace(s.Judge) == "":
		return errors.New("missing judge")
	case len(s.Scores) == 0:
		return errors.New("missing scores")
	}
	return nil
}

// submitScoreResponse reports the updated room and whether an earlier
// submission for the same contestant and round was replaced.
type submitScoreResponse struct {
	Room     model.Room `json:"room"`
	Replaced bool       `json:"replaced"`
}

// HandleSubmitScore handles POST /rooms/{id}/scores requests.
func (h *ScoresHandler) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_score"
	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	room, replaced, err := h.deps.SubmitScore(r.Context(), r.PathValue("id"), model.ScoreSet{
		ContestantID:   req.ContestantID,
		RoundID:        req.RoundID,
		Judge:          req.Judge,
		CriteriaScores: req.Scores,
	})
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, submitScoreResponse{Room: room, Replaced: replaced})
}

// HandleResetScores handles DELETE /rooms/{id}/scores requests. The
// roster survives; only scores are cleared. A confirm=true query
// parameter is required to guard against accidents.
func (h *ScoresHandler) HandleResetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_scores"
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm_required",
			NewKind(op, errors.New("confirm=true required")))
		return
	}
	room, err := h.deps.ResetScores(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, room)
}
