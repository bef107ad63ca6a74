package model

import (
	"strconv"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

type TaskAction int

const (
	ActionUpdateIndex TaskAction = iota
	ActionQueryIndex
	ActionDestroyIndex
)

// Task is a unit of work submitted to the serializer queue.
// Tasks execute one at a time in submission order; Done is
// closed once Err carries the outcome.
type Task struct {
	ID          string
	ActiveSince time.Time
	Action      TaskAction

	IndexName string
	DBName    string

	Run  func() error
	Err  error
	Done chan struct{}
}

func NewTask(action TaskAction, run func() error) *Task {
	return &Task{
		ID:     uuid.NewV4().String(),
		Action: action,
		Run:    run,
		Done:   make(chan struct{}),
	}
}

// Wait blocks until the task completed and returns its outcome.
func (t *Task) Wait() error {
	<-t.Done
	return t.Err
}

func (t Task) String() string {
	var b strings.Builder
	b.WriteString("<Task ID=")
	b.WriteString(t.ID)
	b.WriteString(" action=")
	b.WriteString(strconv.Itoa(int(t.Action)))
	b.WriteString(" db=")
	b.WriteString(t.DBName)
	b.WriteString(" index=\"")
	b.WriteString(t.IndexName)
	b.WriteString("\"")
	b.WriteString(">")
	return b.String()
}
