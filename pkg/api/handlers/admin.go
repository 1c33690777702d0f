package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"huntd/pkg/hunt"
	"huntd/pkg/logger"
	"huntd/pkg/stats"
	"huntd/pkg/store"
	"huntd/pkg/utils"
)

// Admin carries the dependencies for the staff routes.
type Admin struct {
	Session      *hunt.Session
	FirstOrdinal int
	Now          func() time.Time
}

// RegisterAdmin registers admin-only routes onto the admin subrouter.
func RegisterAdmin(r *mux.Router, s *hunt.Session, firstOrdinal int) {
	a := &Admin{Session: s, FirstOrdinal: firstOrdinal, Now: time.Now}
	a.Register(r)
	logger.Info("admin_routes_registered")
}

// Register attaches the routes; split out so tests can inject a clock.
func (a *Admin) Register(r *mux.Router) {
	r.HandleFunc("/stats", a.getStats).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", a.getUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", a.resetUser).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}/finalize", a.finalizeUser).Methods(http.MethodPost)
}

func isAdmin(r *http.Request) bool {
	return r.Header.Get("X-Role-Name") == "admin"
}

// getStats handles GET /v1/admin/stats: the global hunt summary computed
// from a full scan of the progress records.
func (a *Admin) getStats(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	records, err := store.ListProgress()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, stats.Compute(records, a.FirstOrdinal))
}

// getUser handles GET /v1/admin/users/{id}: the raw record including the
// fields the player view hides (attempts, flag, timestamps).
func (a *Admin) getUser(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	p, err := store.GetProgress(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "no progress for user")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

// resetUser handles DELETE /v1/admin/users/{id}: wipes the record so the
// user starts from the first key.
func (a *Admin) resetUser(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	if err := a.Session.Reset(userID); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("user_reset", "user", userID)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "reset", "user_id": userID})
}

// finalizeUser handles POST /v1/admin/users/{id}/finalize: staff verified
// the decoded message and closes out the user's hunt.
func (a *Admin) finalizeUser(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	userID := strings.TrimSpace(mux.Vars(r)["id"])
	p, err := a.Session.Finalize(userID, a.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "no progress for user")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}
