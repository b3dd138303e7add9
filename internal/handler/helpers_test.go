package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
	"github.com/BuzzLyutic/task-manager-web/internal/repo"
	"github.com/BuzzLyutic/task-manager-web/internal/service"
	"github.com/BuzzLyutic/task-manager-web/internal/storage"
	"github.com/BuzzLyutic/task-manager-web/internal/view"
)

type testApp struct {
	router  http.Handler
	store   *repo.TaskStore
	storage storage.Storage
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithStorage(t, storage.NewMemoryStorage())
}

func setupAppWithStorage(t *testing.T, st storage.Storage) *testApp {
	t.Helper()

	store := repo.NewTaskStore(st)
	require.NoError(t, store.Load(context.Background()))

	taskService := service.NewTaskService(store)
	renderer, err := view.NewRenderer("Task Manager")
	require.NoError(t, err)

	logger := zap.NewNop()
	router := NewRouter(
		NewTaskHandler(taskService, logger),
		NewBoardHandler(taskService, renderer, logger),
		logger,
	)
	return &testApp{router: router, store: store, storage: st}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) seed(t *testing.T, title string, status model.Status) model.Task {
	t.Helper()
	task, err := a.store.Create(context.Background(), model.TaskInput{
		Title:   title,
		DueDate: "2030-01-01",
		Status:  status,
	})
	require.NoError(t, err)
	return task
}

func (a *testApp) all(t *testing.T) []model.Task {
	t.Helper()
	tasks, err := a.store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	return tasks
}
