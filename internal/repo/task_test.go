package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
	"github.com/BuzzLyutic/task-manager-web/internal/storage"
)

var testNow = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func setupStore(t *testing.T) (*TaskStore, *storage.MemoryStorage) {
	t.Helper()
	st := storage.NewMemoryStorage()

	n := 0
	store := NewTaskStore(st,
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, store.Load(context.Background()))
	return store, st
}

func seed(t *testing.T, s *TaskStore, statuses ...model.Status) []model.Task {
	t.Helper()
	out := make([]model.Task, 0, len(statuses))
	for i, st := range statuses {
		task, err := s.Create(context.Background(), model.TaskInput{
			Title:   fmt.Sprintf("Task %d", i),
			DueDate: "2025-02-01",
			Status:  st,
		})
		require.NoError(t, err)
		out = append(out, task)
	}
	return out
}

func stored(t *testing.T, st storage.Storage) string {
	t.Helper()
	b, err := st.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	return string(b)
}

func TestTaskStore_LoadEmpty(t *testing.T) {
	store, st := setupStore(t)

	tasks, err := store.List(context.Background(), model.TaskFilter{Status: model.FilterAll})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = st.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "load must not write")
}

func TestTaskStore_LoadNullComments(t *testing.T) {
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Put(context.Background(), DefaultKey,
		[]byte(`[{"id":"a","title":"A","status":"todo","dueDate":"2025-01-01","comments":null}]`)))

	store := NewTaskStore(st)
	require.NoError(t, store.Load(context.Background()))

	task, err := store.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.NotNil(t, task.Comments)
	assert.Empty(t, task.Comments)
}

func TestTaskStore_LoadEmptyValue(t *testing.T) {
	for _, value := range []string{"", "  \n"} {
		st := storage.NewMemoryStorage()
		require.NoError(t, st.Put(context.Background(), DefaultKey, []byte(value)))

		store := NewTaskStore(st)
		require.NoError(t, store.Load(context.Background()), "value %q", value)

		tasks, err := store.List(context.Background(), model.TaskFilter{})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	}
}

func TestTaskStore_LoadCorrupt(t *testing.T) {
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Put(context.Background(), DefaultKey, []byte(`{not json`)))

	store := NewTaskStore(st)
	assert.Error(t, store.Load(context.Background()))
}

func TestTaskStore_Create(t *testing.T) {
	store, st := setupStore(t)
	existing := seed(t, store, model.StatusDone)

	created, err := store.Create(context.Background(), model.TaskInput{
		Title:   "Buy milk",
		DueDate: "2025-01-01",
		Status:  model.StatusTodo,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, existing[0].ID, created.ID)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Equal(t, "", created.Description)
	assert.Empty(t, created.Comments)

	all, err := store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, created.ID, all[1].ID, "new task goes to the end")

	assert.Contains(t, stored(t, st), `"title":"Buy milk"`)
}

func TestTaskStore_CreateDoesNotValidate(t *testing.T) {
	store, _ := setupStore(t)

	created, err := store.Create(context.Background(), model.TaskInput{})
	require.NoError(t, err)
	assert.Equal(t, "", created.Title)
}

func TestTaskStore_Get(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusTodo)

	got, err := store.Get(context.Background(), tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tasks[0], got)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrorNotFound)
}

func TestTaskStore_Update(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusTodo)
	_, err := store.AddComment(context.Background(), tasks[0].ID, "first")
	require.NoError(t, err)

	before, err := store.Get(context.Background(), tasks[0].ID)
	require.NoError(t, err)

	done := model.StatusDone
	updated, err := store.Update(context.Background(), tasks[0].ID, model.TaskPatch{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDone, updated.Status)
	assert.Equal(t, before.ID, updated.ID)
	assert.Equal(t, before.Title, updated.Title)
	assert.Equal(t, before.Description, updated.Description)
	assert.Equal(t, before.DueDate, updated.DueDate)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.Equal(t, before.Comments, updated.Comments)
}

func TestTaskStore_UpdateNotFound(t *testing.T) {
	store, st := setupStore(t)
	seed(t, store, model.StatusTodo)
	snapshot := stored(t, st)

	title := "nope"
	_, err := store.Update(context.Background(), "missing", model.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrorNotFound)
	assert.Equal(t, snapshot, stored(t, st))
}

func TestTaskStore_Delete(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusTodo, model.StatusDone, model.StatusInProgress)

	require.NoError(t, store.Delete(context.Background(), tasks[1].ID))

	all, err := store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, tasks[0].ID, all[0].ID)
	assert.Equal(t, tasks[2].ID, all[1].ID)

	_, err = store.Get(context.Background(), tasks[1].ID)
	assert.ErrorIs(t, err, ErrorNotFound)
}

func TestTaskStore_DeleteMissingIsNoop(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusTodo, model.StatusDone)

	require.NoError(t, store.Delete(context.Background(), "missing"))

	all, err := store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, tasks, all)
}

func TestTaskStore_List(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusDone, model.StatusTodo, model.StatusDone, model.StatusInProgress)

	tests := []struct {
		name   string
		filter string
		want   []model.Task
	}{
		{name: "all", filter: model.FilterAll, want: tasks},
		{name: "empty means all", filter: "", want: tasks},
		{name: "done", filter: "done", want: []model.Task{tasks[0], tasks[2]}},
		{name: "in-progress", filter: "in-progress", want: []model.Task{tasks[3]}},
		{name: "unknown status", filter: "archived", want: []model.Task{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(context.Background(), model.TaskFilter{Status: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskStore_ListReturnsCopies(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusTodo)

	got, err := store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	got[0].Title = "mutated"
	got[0].Comments = append(got[0].Comments, model.Comment{ID: "x"})

	again, err := store.Get(context.Background(), tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tasks[0].Title, again.Title)
	assert.Empty(t, again.Comments)
}

func TestTaskStore_AddComment(t *testing.T) {
	store, _ := setupStore(t)
	tasks := seed(t, store, model.StatusTodo, model.StatusTodo)

	first, err := store.AddComment(context.Background(), tasks[0].ID, "first")
	require.NoError(t, err)
	second, err := store.AddComment(context.Background(), tasks[0].ID, "second")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, testNow, second.CreatedAt)

	got, err := store.Get(context.Background(), tasks[0].ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "first", got.Comments[0].Text)
	assert.Equal(t, "second", got.Comments[1].Text)

	other, err := store.Get(context.Background(), tasks[1].ID)
	require.NoError(t, err)
	assert.Empty(t, other.Comments)
}

func TestTaskStore_AddCommentNotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.AddComment(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrorNotFound)
}

func TestTaskStore_RoundTrip(t *testing.T) {
	store, st := setupStore(t)
	seed(t, store, model.StatusTodo, model.StatusDone, model.StatusInProgress)
	all, err := store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	_, err = store.AddComment(context.Background(), all[1].ID, "note")
	require.NoError(t, err)

	want, err := store.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)

	reloaded := NewTaskStore(st)
	require.NoError(t, reloaded.Load(context.Background()))
	got, err := reloaded.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, reloaded.Save(context.Background()))
	again := NewTaskStore(st)
	require.NoError(t, again.Load(context.Background()))
	got2, err := again.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, want, got2)
}

func TestTaskStore_Stats(t *testing.T) {
	store, _ := setupStore(t)
	seed(t, store, model.StatusTodo, model.StatusDone, model.StatusDone)

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, map[model.Status]int{
		model.StatusTodo:       1,
		model.StatusInProgress: 0,
		model.StatusDone:       2,
	}, stats.ByStatus)
}

func TestTaskStore_IdempotencyKeys(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.GetIdempotencyKey(ctx, "k")
	assert.ErrorIs(t, err, ErrorNotFound)

	require.NoError(t, store.SaveIdempotencyKey(ctx, "k", "first"))
	require.NoError(t, store.SaveIdempotencyKey(ctx, "k", "second"))

	id, err := store.GetIdempotencyKey(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "first", id)
}

type failingStorage struct {
	storage.Storage
}

func (failingStorage) Put(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestTaskStore_SaveFailurePropagates(t *testing.T) {
	store := NewTaskStore(failingStorage{Storage: storage.NewMemoryStorage()})
	require.NoError(t, store.Load(context.Background()))

	_, err := store.Create(context.Background(), model.TaskInput{Title: "x", DueDate: "2025-01-01"})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestTaskStore_Export(t *testing.T) {
	store, st := setupStore(t)
	seed(t, store, model.StatusTodo, model.StatusDone)

	out, err := store.Export(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, stored(t, st), string(out))
	assert.Contains(t, string(out), "\n  {")
}

type flakyStorage struct {
	storage.Storage
	failures int
}

func (f *flakyStorage) Put(ctx context.Context, key string, value []byte) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.Storage.Put(ctx, key, value)
}

func TestTaskStore_SaveCatchesUpAfterFailedWrite(t *testing.T) {
	mem := storage.NewMemoryStorage()
	st := &flakyStorage{Storage: mem, failures: 1}
	store := NewTaskStore(st)
	require.NoError(t, store.Load(context.Background()))

	_, err := store.Create(context.Background(), model.TaskInput{Title: "kept", DueDate: "2025-01-01"})
	require.ErrorContains(t, err, "disk full")

	_, err = mem.Get(context.Background(), DefaultKey)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Save(context.Background()))
	assert.Contains(t, stored(t, mem), `"title":"kept"`)
}
