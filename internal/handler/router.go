package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-web/internal/view"
)

func NewRouter(tasks *TaskHandler, board *BoardHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.StaticFS()))))

	// HTML
	r.Get("/", board.Index)
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", board.Create)
		r.Get("/list", board.List)
		r.Get("/{id}/comments", board.Comments)
		r.Get("/{id}/edit", board.Edit)
		r.Post("/{id}", board.Update)
		r.Post("/{id}/delete", board.Delete)
		r.Post("/{id}/comments", board.AddComment)
	})

	// JSON API
	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/", tasks.Create)
		r.Get("/", tasks.List)
		r.Get("/{id}", tasks.Get)
		r.Patch("/{id}", tasks.Update)
		r.Delete("/{id}", tasks.Delete)
		r.Post("/{id}/comments", tasks.AddComment)
	})
	r.Get("/api/stats", tasks.Stats)

	return r
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("took", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
