package view

import (
	"fmt"
	"net/url"
	"time"

	"github.com/BuzzLyutic/task-manager-web/internal/model"
)

const (
	dateLayout    = "2006-01-02"
	displayLayout = "Jan 2, 2006"
)

type FilterButton struct {
	Value  string
	Label  string
	Count  int
	Active bool
	Href   string
}

type StatusOption struct {
	Value model.Status
	Label string
}

type TaskCard struct {
	ID            string
	Title         string
	Description   string
	Status        model.Status
	StatusLabel   string
	Created       string
	Due           string
	CommentCount  int
	CommentLabel  string
	EditHref      string
	DeleteAction  string
	ConfirmDelete string
}

type CommentItem struct {
	ID   string
	Date string
	Text string
}

// Editor is the open edit modal. A nil *Editor on the board means closed.
type Editor struct {
	TaskID        string
	Title         string
	Description   string
	DueDate       string
	Status        model.Status
	Comments      []CommentItem
	CommentText   string
	Action        string
	CommentAction string
	CloseHref     string
}

// Board is everything the task page renders.
type Board struct {
	Filter   string
	Filters  []FilterButton
	Tasks    []TaskCard
	Editor   *Editor
	Statuses []StatusOption
	Form     model.TaskInput
	Notice   string
	Alert    string
	MinDate  string

	stats model.Stats
}

func NewBoard(stats model.Stats, now time.Time) *Board {
	b := &Board{
		stats:   stats,
		MinDate: now.Format(dateLayout),
		Form:    model.TaskInput{Status: model.StatusTodo},
	}
	for _, st := range model.Statuses {
		b.Statuses = append(b.Statuses, StatusOption{Value: st, Label: st.Label()})
	}
	b.SetFilter(model.FilterAll)
	return b
}

// SetFilter marks the matching filter control active and every other one
// inactive. The caller re-lists tasks for the new filter.
func (b *Board) SetFilter(filter string) {
	if filter == "" {
		filter = model.FilterAll
	}
	b.Filter = filter

	b.Filters = b.Filters[:0]
	b.Filters = append(b.Filters, FilterButton{
		Value:  model.FilterAll,
		Label:  "All",
		Count:  b.stats.TotalTasks,
		Active: filter == model.FilterAll,
		Href:   FilterHref(model.FilterAll),
	})
	for _, st := range model.Statuses {
		b.Filters = append(b.Filters, FilterButton{
			Value:  string(st),
			Label:  st.Label(),
			Count:  b.stats.ByStatus[st],
			Active: filter == string(st),
			Href:   FilterHref(string(st)),
		})
	}
}

func (b *Board) SetTasks(tasks []model.Task) {
	b.Tasks = ListView(tasks, b.Filter)
}

func (b *Board) OpenEditor(t model.Task) {
	b.Editor = &Editor{
		TaskID:        t.ID,
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       t.DueDate,
		Status:        t.Status,
		Comments:      CommentsView(t),
		Action:        "/tasks/" + url.PathEscape(t.ID) + withFilter(b.Filter),
		CommentAction: "/tasks/" + url.PathEscape(t.ID) + "/comments" + withFilter(b.Filter),
		CloseHref:     FilterHref(b.Filter),
	}
}

// CloseEditor hides the modal. Nothing typed into it survives.
func (b *Board) CloseEditor() {
	b.Editor = nil
}

func (b *Board) EditorOpen() bool {
	return b.Editor != nil
}

func ListView(tasks []model.Task, filter string) []TaskCard {
	cards := make([]TaskCard, 0, len(tasks))
	for _, t := range tasks {
		n := len(t.Comments)
		card := TaskCard{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Status:        t.Status,
			StatusLabel:   t.Status.Label(),
			Created:       FormatTime(t.CreatedAt),
			Due:           FormatDate(t.DueDate),
			CommentCount:  n,
			EditHref:      "/tasks/" + url.PathEscape(t.ID) + "/edit" + withFilter(filter),
			DeleteAction:  "/tasks/" + url.PathEscape(t.ID) + "/delete" + withFilter(filter),
			ConfirmDelete: `Are you sure you want to delete "` + t.Title + `"?`,
		}
		if n == 1 {
			card.CommentLabel = "1 comment"
		} else if n > 1 {
			card.CommentLabel = fmt.Sprintf("%d comments", n)
		}
		cards = append(cards, card)
	}
	return cards
}

func CommentsView(t model.Task) []CommentItem {
	items := make([]CommentItem, 0, len(t.Comments))
	for _, c := range t.Comments {
		items = append(items, CommentItem{
			ID:   c.ID,
			Date: FormatTime(c.CreatedAt),
			Text: c.Text,
		})
	}
	return items
}

func FilterHref(filter string) string {
	if filter == "" || filter == model.FilterAll {
		return "/"
	}
	return "/?filter=" + url.QueryEscape(filter)
}

func withFilter(filter string) string {
	if filter == "" || filter == model.FilterAll {
		return ""
	}
	return "?filter=" + url.QueryEscape(filter)
}

// FormatDate renders a YYYY-MM-DD date for display. Anything else is shown
// as stored.
func FormatDate(s string) string {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return s
	}
	return d.Format(displayLayout)
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayLayout)
}
