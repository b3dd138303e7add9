package repo

import (
	"context"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, taskID, text string) (model.Comment, error)
	SaveIdempotencyKey(ctx context.Context, key string, taskID string) error
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
	GetStats(ctx context.Context) (model.Stats, error)
}
