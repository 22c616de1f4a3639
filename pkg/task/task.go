package task

import "errors"

var ErrTaskNotFound = errors.New("task not found")

// Task is one entry of the can-do list. Position orders the list; lower
// positions render first. ProjectID groups the task under a project and may
// be empty for ungrouped tasks.
type Task struct {
	ID        string
	Content   string
	Completed bool
	Position  int
	ProjectID string
}
