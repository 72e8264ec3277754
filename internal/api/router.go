package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

// Store is the slice of the persistence gateway the handlers depend on.
type Store interface {
	GetTasks(ctx context.Context, userID string, q repository.TaskQuery) ([]model.Task, error)
	GetTask(ctx context.Context, id uint) (*model.Task, error)
	CreateTask(ctx context.Context, userID string, in repository.NewTask) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (*model.Task, error)
	DeleteTask(ctx context.Context, userID string, id uint) (*model.Task, error)
	SetTaskCompleted(ctx context.Context, userID string, id uint, completed bool) (*model.Task, error)

	GetCategories(ctx context.Context, userID string) ([]model.Category, error)
	GetCategory(ctx context.Context, id uint) (*model.Category, error)
	CreateCategory(ctx context.Context, userID string, in repository.NewCategory) (*model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, userID string, id uint) (*model.Category, error)
}

type server struct {
	store    Store
	verifier auth.Verifier
	log      logrus.FieldLogger
}

// NewRouter wires every route behind the shared middleware chain.
func NewRouter(store Store, verifier auth.Verifier, log logrus.FieldLogger) http.Handler {
	s := &server{
		store:    store,
		verifier: verifier,
		log:      log.WithField("component", "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /tasks", s.requireAuth(s.listTasks))
	mux.Handle("POST /tasks", s.requireAuth(s.createTask))
	mux.Handle("PUT /tasks", s.requireAuth(s.updateTask))
	mux.Handle("DELETE /tasks/{id}", s.requireAuth(s.deleteTask))
	mux.Handle("PUT /tasks/{id}/completed", s.requireAuth(s.setTaskCompleted))

	mux.Handle("GET /categories", s.requireAuth(s.listCategories))
	mux.Handle("POST /categories", s.requireAuth(s.createCategory))
	mux.Handle("PUT /categories/{categoryId}", s.requireAuth(s.updateCategory))
	mux.Handle("DELETE /categories/{categoryId}", s.requireAuth(s.deleteCategory))

	mux.Handle("GET /users/{id}", s.requireAuth(s.getUser))

	var h http.Handler = mux
	h = metricsMiddleware(h)
	h = loggingMiddleware(s.log)(h)
	h = securityHeadersMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
