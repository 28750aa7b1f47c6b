package task

import (
	"context"
	"errors"
	"time"
)

type Task struct {
	ID             string
	Title          string
	Description    string
	Priority       string
	Status         string
	DueDate        *time.Time
	AssignedByName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (Task, error)
}
