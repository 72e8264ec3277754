package api

import (
	"net/http"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

type createCategoryRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DisplayColor *string `json:"display_color"`
}

type categoryPayload struct {
	ID           *uint   `json:"id"`
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DisplayColor *string `json:"display_color"`
}

func (s *server) listCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	categories, err := s.store.GetCategories(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, categories)
}

func (s *server) createCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createCategoryRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	category, err := s.store.CreateCategory(r.Context(), userID, repository.NewCategory{
		Name:         req.Name,
		Description:  req.Description,
		DisplayColor: req.DisplayColor,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, category)
}

// updateCategory takes the id from the path. A body id, when present, must agree with it.
func (s *server) updateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "categoryId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req categoryPayload
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID != nil && *req.ID != id {
		s.writeError(w, r, model.Invalid("body id %d does not match path id %d", *req.ID, id))
		return
	}
	if req.UserID != userID {
		s.requestLog(r).WithField("category_id", id).Warn("category update for another owner")
		s.writeError(w, r, model.ErrForbidden)
		return
	}

	category, err := s.store.UpdateCategory(r.Context(), model.Category{
		ID:           id,
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		DisplayColor: req.DisplayColor,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, category)
}

func (s *server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "categoryId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.store.GetCategory(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	category, err := s.store.DeleteCategory(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, category)
}
