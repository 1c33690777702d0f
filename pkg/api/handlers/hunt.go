// Package handlers exposes the hunt core over HTTP. Routes are registered
// on gorilla/mux routers; authentication and rate limiting happen in the
// gateway middleware before any handler runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"huntd/pkg/hunt"
	"huntd/pkg/logger"
	"huntd/pkg/models"
	"huntd/pkg/utils"
)

const maxGuessBytes = 4 * 1024

// Hunt carries the session dependency for the player-facing routes.
type Hunt struct {
	Session *hunt.Session
	Now     func() time.Time
}

// RegisterHunt registers the player-facing hunt routes.
func RegisterHunt(r *mux.Router, s *hunt.Session) {
	h := &Hunt{Session: s, Now: time.Now}
	h.Register(r)
}

// Register attaches the routes; split out so tests can inject a clock.
func (h *Hunt) Register(r *mux.Router) {
	r.HandleFunc("/hunt/users/{id}/guesses", h.submitGuess).Methods(http.MethodPost)
	r.HandleFunc("/hunt/users/{id}/status", h.getStatus).Methods(http.MethodGet)
	r.HandleFunc("/hunt/users/{id}/clue", h.getClue).Methods(http.MethodGet)
	r.HandleFunc("/hunt/users/{id}/codes", h.getCodes).Methods(http.MethodGet)
}

type guessRequest struct {
	Text string `json:"text"`
}

// submitGuess handles POST /v1/hunt/users/{id}/guesses. The outcome is
// always 200 with a typed body; only transport and store failures map to
// error statuses.
func (h *Hunt) submitGuess(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	if userID == "" {
		utils.JSONError(w, http.StatusBadRequest, "user id required")
		return
	}

	var req guessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGuessBytes)).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	outcome, err := h.Session.Submit(r.Context(), userID, req.Text, h.Now())
	if err != nil && outcome.Kind == models.OutcomeTryAgain {
		logger.Warn("guess_not_committed", "user", userID, "error", err)
		_ = utils.JSONWrite(w, http.StatusServiceUnavailable, outcome)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, outcome)
}

func (h *Hunt) getStatus(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	if userID == "" {
		utils.JSONError(w, http.StatusBadRequest, "user id required")
		return
	}
	view, err := h.Session.Status(userID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, view)
}

// getClue serves just the current clue, the shape the bot DMs back to a
// user who asks where they are.
func (h *Hunt) getClue(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	if userID == "" {
		utils.JSONError(w, http.StatusBadRequest, "user id required")
		return
	}
	view, err := h.Session.Status(userID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		UserID  string `json:"user_id"`
		Ordinal int    `json:"ordinal"`
		Clue    string `json:"clue"`
	}{UserID: userID, Ordinal: view.CurrentOrdinal, Clue: view.CurrentClue})
}

func (h *Hunt) getCodes(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	if userID == "" {
		utils.JSONError(w, http.StatusBadRequest, "user id required")
		return
	}
	view, err := h.Session.Status(userID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	codes := view.CodesFound
	if codes == nil {
		codes = []string{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		UserID string   `json:"user_id"`
		Codes  []string `json:"codes"`
	}{UserID: userID, Codes: codes})
}
