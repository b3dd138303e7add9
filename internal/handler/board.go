package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
	"github.com/BuzzLyutic/task-manager-web/internal/repo"
	"github.com/BuzzLyutic/task-manager-web/internal/service"
	"github.com/BuzzLyutic/task-manager-web/internal/view"
	"github.com/BuzzLyutic/task-manager-web/pkg/respond"
)

const (
	alertRequired = "Please fill in all required fields."
	alertComment  = "Please enter a comment."
)

var notices = map[string]string{
	"created": "Task created successfully!",
}

// BoardHandler serves the HTML task page and its form posts. Every
// successful post redirects back to a GET, so reloading never resubmits.
type BoardHandler struct {
	service *service.TaskService
	view    *view.Renderer
	logger  *zap.Logger
	now     func() time.Time
}

func NewBoardHandler(srv *service.TaskService, renderer *view.Renderer, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		service: srv,
		view:    renderer,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *BoardHandler) Index(w http.ResponseWriter, r *http.Request) {
	b, err := h.board(r.Context(), filterFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// The board at / is the closed state of the edit modal.
	b.CloseEditor()
	b.Notice = notices[r.URL.Query().Get("notice")]
	h.render(w, r, http.StatusOK, b)
}

// List renders only the task list fragment for the current filter.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	tasks, err := h.service.List(r.Context(), model.TaskFilter{Status: filter})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.fragment(w, r, func(w http.ResponseWriter) error {
		return h.view.RenderList(w, view.ListView(tasks, filter))
	})
}

// Comments renders only the comment list of one task.
func (h *BoardHandler) Comments(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrorNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.fragment(w, r, func(w http.ResponseWriter) error {
		return h.view.RenderComments(w, view.CommentsView(task))
	})
}

// Edit opens the modal for a task. An unknown id just shows the board.
func (h *BoardHandler) Edit(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrorNotFound) {
		h.redirect(w, r, view.FilterHref(filter))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	b, err := h.board(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b.OpenEditor(task)
	h.render(w, r, http.StatusOK, b)
}

func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	in := model.TaskInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		DueDate:     r.PostFormValue("dueDate"),
		Status:      model.Status(r.PostFormValue("status")),
	}

	_, err := h.service.Create(r.Context(), in, "")
	if errors.Is(err, service.ErrValidation) {
		b, berr := h.board(r.Context(), filter)
		if berr != nil {
			h.fail(w, r, berr)
			return
		}
		b.Form = in
		b.Alert = alertRequired
		h.render(w, r, http.StatusUnprocessableEntity, b)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := url.Values{}
	if filter != model.FilterAll {
		q.Set("filter", filter)
	}
	q.Set("notice", "created")
	h.redirect(w, r, "/?"+q.Encode())
}

func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	id := chi.URLParam(r, "id")

	title := r.PostFormValue("title")
	description := r.PostFormValue("description")
	dueDate := r.PostFormValue("dueDate")
	status := model.Status(r.PostFormValue("status"))
	patch := model.TaskPatch{
		Title:       &title,
		Description: &description,
		DueDate:     &dueDate,
		Status:      &status,
	}

	_, err := h.service.Update(r.Context(), id, patch)
	switch {
	case err == nil, errors.Is(err, repo.ErrorNotFound):
		h.redirect(w, r, view.FilterHref(filter))
	case errors.Is(err, service.ErrValidation):
		h.reopen(w, r, id, filter, alertRequired, func(e *view.Editor) {
			e.Title, e.Description, e.DueDate, e.Status = title, description, dueDate, status
		})
	default:
		h.fail(w, r, err)
	}
}

func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, view.FilterHref(filterFrom(r)))
}

func (h *BoardHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	id := chi.URLParam(r, "id")
	text := r.PostFormValue("text")

	_, err := h.service.AddComment(r.Context(), id, model.CommentInput{Text: text})
	switch {
	case err == nil:
		h.redirect(w, r, editHref(id, filter))
	case errors.Is(err, repo.ErrorNotFound):
		h.redirect(w, r, view.FilterHref(filter))
	case errors.Is(err, service.ErrValidation):
		h.reopen(w, r, id, filter, alertComment, func(e *view.Editor) {
			e.CommentText = text
		})
	default:
		h.fail(w, r, err)
	}
}

// reopen re-renders the open modal after a rejected submit, keeping what
// the user typed.
func (h *BoardHandler) reopen(w http.ResponseWriter, r *http.Request, id, filter, alert string, keep func(*view.Editor)) {
	task, err := h.service.Get(r.Context(), id)
	if errors.Is(err, repo.ErrorNotFound) {
		h.redirect(w, r, view.FilterHref(filter))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	b, err := h.board(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b.OpenEditor(task)
	keep(b.Editor)
	b.Alert = alert
	h.render(w, r, http.StatusUnprocessableEntity, b)
}

func (h *BoardHandler) board(ctx context.Context, filter string) (*view.Board, error) {
	stats, err := h.service.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := h.service.List(ctx, model.TaskFilter{Status: filter})
	if err != nil {
		return nil, err
	}

	b := view.NewBoard(stats, h.now())
	b.SetFilter(filter)
	b.SetTasks(tasks)
	return b, nil
}

func (h *BoardHandler) render(w http.ResponseWriter, r *http.Request, code int, b *view.Board) {
	err := respond.HTML(w, r, code, func(w http.ResponseWriter) error {
		return h.view.Render(w, b)
	})
	if err != nil {
		h.logger.Error("render failed", zap.Error(err))
	}
}

func (h *BoardHandler) fragment(w http.ResponseWriter, r *http.Request, render func(http.ResponseWriter) error) {
	if err := respond.HTML(w, r, http.StatusOK, render); err != nil {
		h.logger.Error("render failed", zap.Error(err))
	}
}

func (h *BoardHandler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *BoardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func filterFrom(r *http.Request) string {
	if f := r.URL.Query().Get("filter"); f != "" {
		return f
	}
	return model.FilterAll
}

func editHref(id, filter string) string {
	href := "/tasks/" + url.PathEscape(id) + "/edit"
	if filter != model.FilterAll {
		href += "?filter=" + url.QueryEscape(filter)
	}
	return href
}
