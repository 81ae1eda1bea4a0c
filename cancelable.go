package promiseq

// Cancelable is the capability set a wrapped asynchronous task
// implements so a stage can hand lifecycle control over its in-flight
// work to the chain. Suspend, Resume and Cancel must all be safe to
// call from any goroutine, and Cancel must be idempotent.
type Cancelable interface {
	Suspend()
	Resume()
	Cancel()
}

// TaskSlot delivers a Cancelable into the chain's monitor. A stage body
// that wraps an asynchronous operation writes its task into the slot;
// the chain then forwards Suspend, Resume and Cancel to it until another
// task replaces it or the chain is canceled. Settling the stage does not
// remove the task.
type TaskSlot struct {
	m *monitor
}

// Set installs task as the chain's wrapped task, replacing any previous
// one. If the chain is already suspended or canceled, task receives
// that signal immediately.
func (s *TaskSlot) Set(task Cancelable) {
	if s == nil || s.m == nil || task == nil {
		return
	}
	s.m.installTask(task)
}

// aggregateTask fans lifecycle control out to the members of a combined
// promise.
type aggregateTask struct {
	members []Cancelable
}

func (t *aggregateTask) Suspend() {
	for _, m := range t.members {
		m.Suspend()
	}
}

func (t *aggregateTask) Resume() {
	for _, m := range t.members {
		m.Resume()
	}
}

func (t *aggregateTask) Cancel() {
	for _, m := range t.members {
		m.Cancel()
	}
}
