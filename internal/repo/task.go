package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
	"github.com/BuzzLyutic/task-manager-web/internal/storage"
)

var (
	ErrorNotFound = errors.New("not found")
)

// DefaultKey is the storage slot holding the serialized task list.
const DefaultKey = "taskManagerTasks"

// TaskStore keeps the ordered task list in memory and mirrors it to a
// storage slot after every mutation. The mutex is held across mutation and
// write, so operations never interleave.
type TaskStore struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
	tasks   []model.Task
	idemp   map[string]string

	newID func() string
	now   func() time.Time
}

type Option func(*TaskStore)

func WithKey(key string) Option {
	return func(s *TaskStore) { s.key = key }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *TaskStore) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *TaskStore) { s.now = fn }
}

func NewTaskStore(st storage.Storage, opts ...Option) *TaskStore {
	s := &TaskStore{
		storage: st,
		key:     DefaultKey,
		tasks:   []model.Task{},
		idemp:   make(map[string]string),
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the stored one. A missing or blank
// slot leaves the list empty.
func (s *TaskStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.tasks = []model.Task{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.key, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		s.tasks = []model.Task{}
		return nil
	}

	var tasks []model.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return fmt.Errorf("decode %s: %w", s.key, err)
	}
	for i := range tasks {
		if tasks[i].Comments == nil {
			tasks[i].Comments = []model.Comment{}
		}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	s.tasks = tasks
	return nil
}

// Save writes the whole list to storage.
func (s *TaskStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *TaskStore) saveLocked(ctx context.Context) error {
	b, err := json.Marshal(s.tasks)
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, s.key, b); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// Export returns the task list as indented JSON, same shape as the stored slot.
func (s *TaskStore) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.MarshalIndent(s.tasks, "", "  ")
}

func (s *TaskStore) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   s.now(),
		DueDate:     in.DueDate,
		Comments:    []model.Comment{},
	}
	s.tasks = append(s.tasks, t)

	return t.Clone(), s.saveLocked(ctx)
}

func (s *TaskStore) Get(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}
	return s.tasks[i].Clone(), nil
}

func (s *TaskStore) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}

	t := &s.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}

	return t.Clone(), s.saveLocked(ctx)
}

// Delete removes the task if present. The list is persisted either way.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	return s.saveLocked(ctx)
}

func (s *TaskStore) AddComment(ctx context.Context, taskID, text string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(taskID)
	if i < 0 {
		return model.Comment{}, ErrorNotFound
	}

	c := model.Comment{
		ID:        s.newID(),
		Text:      text,
		CreatedAt: s.now(),
	}
	s.tasks[i].Comments = append(s.tasks[i].Comments, c)

	return c, s.saveLocked(ctx)
}

func (s *TaskStore) SaveIdempotencyKey(ctx context.Context, key string, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.idemp[key]; !ok {
		s.idemp[key] = taskID
	}
	return nil
}

func (s *TaskStore) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.idemp[key]
	if !ok {
		return "", ErrorNotFound
	}
	return id, nil
}

func (s *TaskStore) GetStats(ctx context.Context) (model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.Stats{
		TotalTasks: len(s.tasks),
		ByStatus:   make(map[model.Status]int, len(model.Statuses)),
	}
	for _, st := range model.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, t := range s.tasks {
		stats.ByStatus[t.Status]++
	}
	return stats, nil
}

func (s *TaskStore) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
