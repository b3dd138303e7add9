package model

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every status in the order the filter controls show them.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	DueDate     string    `json:"dueDate"`
	Comments    []Comment `json:"comments"`
}

type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy that does not share the comment slice.
func (t Task) Clone() Task {
	c := t
	c.Comments = make([]Comment, len(t.Comments))
	copy(c.Comments, t.Comments)
	return c
}

// TaskInput is what the create form (or the JSON API) submits.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      Status `json:"status"`
}

// TaskPatch carries the fields of an update; nil fields keep their value.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

type CommentInput struct {
	Text string `json:"text"`
}

// FilterAll selects every task regardless of status.
const FilterAll = "all"

type TaskFilter struct {
	Status string
}

func (f TaskFilter) All() bool {
	return f.Status == "" || f.Status == FilterAll
}

func (f TaskFilter) Match(t Task) bool {
	return f.All() || string(t.Status) == f.Status
}

type Stats struct {
	TotalTasks int            `json:"total_tasks"`
	ByStatus   map[Status]int `json:"by_status"`
}
