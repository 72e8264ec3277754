package api

import (
	"net/http"

	"task-tracker/internal/model"
)

type userResponse struct {
	ID string `json:"id"`
}

// getUser confirms that the path id is the authenticated identity.
func (s *server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.PathValue("id") != userID {
		s.writeError(w, r, model.ErrForbidden)
		return
	}
	s.writeJSON(w, http.StatusOK, userResponse{ID: userID})
}
