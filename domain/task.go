package domain

import (
	"fmt"
	"strings"
)

// Priority ranks a todo. The API only accepts the three upper-case values.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// DefaultPriority is applied when a todo is created without one.
const DefaultPriority = PriorityLow

// ParsePriority accepts any casing; an empty string yields the default.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return DefaultPriority, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	}
	return "", WrapError(ErrCodeInvalid, "invalid priority", fmt.Errorf("%q is not one of HIGH, MEDIUM, LOW", raw))
}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Todo is a task as returned by the API. On read the category is embedded in full.
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Category  *Category `json:"category"`
	Priority  Priority  `json:"priority"`
	DueDate   *string   `json:"dueDate"`
}

func (t *Todo) IsCompleted() bool {
	return t != nil && t.Completed
}

// CategoryID returns 0 when the todo is uncategorised.
func (t *Todo) CategoryID() int64 {
	if t == nil || t.Category == nil {
		return 0
	}
	return t.Category.ID
}

// NewTodo carries what a caller supplies when creating a todo. Zero values mean "omitted".
type NewTodo struct {
	Title      string
	CategoryID int64
	Priority   Priority
	DueDate    string
}

// TaskFilter narrows a todo listing. A zero value means "no filter".
type TaskFilter struct {
	Keyword    string
	CategoryID int64
	Priority   Priority
	Date       string
}

// IsZero reports whether no field would narrow the result.
func (f TaskFilter) IsZero() bool {
	return strings.TrimSpace(f.Keyword) == "" &&
		f.CategoryID == 0 &&
		strings.TrimSpace(string(f.Priority)) == "" &&
		strings.TrimSpace(f.Date) == ""
}
