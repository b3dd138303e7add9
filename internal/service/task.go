package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
	"github.com/BuzzLyutic/task-manager-web/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError lists the form fields that failed the required checks.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type TaskService struct {
	repo repo.TaskRepository

	// idempMu makes lookup-then-create atomic for keyed creates.
	idempMu sync.Mutex
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	in = normalizeInput(in)
	if err := s.validate(in); err != nil { // Валидация модели на корректность введенных данных
		return model.Task{}, err
	}

	if idempKey != "" { // Если ключ уже встречался, возвращаем ранее созданную задачу
		s.idempMu.Lock()
		defer s.idempMu.Unlock()
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	task, err := s.repo.Create(ctx, in)
	if err != nil {
		return task, err
	}

	if idempKey != "" {
		s.repo.SaveIdempotencyKey(ctx, idempKey, task.ID)
	}

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, filter)
}

func (s *TaskService) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	patch = normalizePatch(patch)
	if err := s.validatePatch(patch); err != nil {
		return model.Task{}, err
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) AddComment(ctx context.Context, taskID string, in model.CommentInput) (model.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return model.Comment{}, &ValidationError{Fields: []string{"text"}}
	}
	return s.repo.AddComment(ctx, taskID, text)
}

func (s *TaskService) GetStats(ctx context.Context) (model.Stats, error) {
	return s.repo.GetStats(ctx)
}

func normalizeInput(in model.TaskInput) model.TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.Status = model.Status(strings.TrimSpace(string(in.Status)))
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	return in
}

func normalizePatch(p model.TaskPatch) model.TaskPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		return &s
	}
	p.Title = trim(p.Title)
	p.Description = trim(p.Description)
	p.DueDate = trim(p.DueDate)
	if p.Status != nil {
		st := model.Status(strings.TrimSpace(string(*p.Status)))
		p.Status = &st
	}
	return p
}

func (s *TaskService) validate(in model.TaskInput) error {
	var fields []string
	if in.Title == "" {
		fields = append(fields, "title")
	}
	if in.DueDate == "" {
		fields = append(fields, "dueDate")
	}
	if !in.Status.Valid() {
		fields = append(fields, "status")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *TaskService) validatePatch(p model.TaskPatch) error {
	var fields []string
	if p.Title != nil && *p.Title == "" {
		fields = append(fields, "title")
	}
	if p.DueDate != nil && *p.DueDate == "" {
		fields = append(fields, "dueDate")
	}
	if p.Status != nil && !p.Status.Valid() {
		fields = append(fields, "status")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
