package api

import (
	"errors"
	"net/http"
	"time"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

type createTaskRequest struct {
	Name        string     `json:"name"`
	CategoryID  *uint      `json:"category_id"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// taskPayload is the full entity accepted by PUT /tasks. Creation date is read but never stored.
type taskPayload struct {
	ID             *uint      `json:"id"`
	UserID         string     `json:"user_id"`
	CategoryID     *uint      `json:"category_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	CreationDate   *time.Time `json:"creation_date"`
	DueDate        *time.Time `json:"due_date"`
	CompletionDate *time.Time `json:"completion_date"`
}

func (s *server) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	tasks, err := s.store.GetTasks(r.Context(), userID, repository.TaskQuery{
		CategoryID: model.ParseCategoryID(query.Get("categoryId")),
		Filter:     model.ParseTaskFilter(query.Get("filter")),
		Horizon:    model.ParseTimeHorizon(query.Get("timeHorizon")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *server) createTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createTaskRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.store.CreateTask(r.Context(), userID, repository.NewTask{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, task)
}

// updateTask rejects malformed bodies and foreign owners before touching storage.
func (s *server) updateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req taskPayload
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID == nil || *req.ID == 0 {
		s.writeError(w, r, model.Invalid("id is required"))
		return
	}
	if req.UserID != userID {
		s.requestLog(r).WithField("task_id", *req.ID).Warn("task update for another owner")
		s.writeError(w, r, model.ErrForbidden)
		return
	}

	task, err := s.store.UpdateTask(r.Context(), model.Task{
		ID:             *req.ID,
		UserID:         userID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		DueDate:        req.DueDate,
		CompletionDate: req.CompletionDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *server) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.store.GetTask(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.store.DeleteTask(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

// setTaskCompleted reads "completed" from the JSON body, or from the query string when the
// body does not carry it. Only the literal string "true" completes the task.
func (s *server) setTaskCompleted(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	raw, fromBody, err := s.completedField(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !fromBody {
		raw = r.URL.Query().Get("completed")
	}

	task, err := s.store.SetTaskCompleted(r.Context(), userID, id, raw == "true")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

// completedField extracts the string value of "completed" from an optional JSON body.
// Non-string values are kept as a non-"true" marker so they read as false.
func (s *server) completedField(r *http.Request) (string, bool, error) {
	var body map[string]any
	if err := s.decodeBody(r, &body); err != nil {
		if errors.Is(err, errEmptyBody) {
			return "", false, nil
		}
		return "", false, err
	}
	v, ok := body["completed"]
	if !ok {
		return "", false, nil
	}
	str, _ := v.(string)
	return str, true, nil
}
