package controller

import (
	"time"

	"github.com/goydb/mrview/pkg/model"
)

const queueDepth = 128

// Queue serializes update, query and destroy tasks across all
// indices of an engine. Tasks execute one at a time in submission
// order, a task starts only after the previous task completed.
// Submission does not wait for execution, callers observe
// completion through Task.Wait. In-flight tasks run to
// completion, there is no cancellation.
//
// The engine port does not promise snapshot isolation across the
// write transaction of an update, serializing readers and writers
// keeps queries from observing a half written batch.
type Queue struct {
	tasks chan *model.Task
}

func NewQueue() *Queue {
	q := &Queue{
		tasks: make(chan *model.Task, queueDepth),
	}
	go q.run()
	return q
}

// Submit enqueues the task and returns it for waiting.
func (q *Queue) Submit(task *model.Task) *model.Task {
	q.tasks <- task
	return task
}

func (q *Queue) run() {
	for task := range q.tasks {
		task.ActiveSince = time.Now()
		task.Err = task.Run()
		close(task.Done)
	}
}

// Close stops the worker once all submitted tasks drained.
func (q *Queue) Close() {
	close(q.tasks)
}
