package batch

import (
	"fmt"
	"runtime"
	"sync"
)

// Task is one unit of pool work, identified by its output ID.
type Task struct {
	ID  string
	Run func() Outcome
}

// taskItem carries the task index for deterministic ordering.
type taskItem struct {
	index int
	task  Task
}

// Pool runs tasks on a fixed number of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool. workers <= 0 uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }

// Run executes every task and returns their outcomes in task order,
// regardless of completion order. A panicking task becomes a failed outcome;
// the other tasks keep running.
func (p *Pool) Run(tasks []Task) []Outcome {
	out := make([]Outcome, len(tasks))
	queue := make(chan taskItem, len(tasks))
	for i, t := range tasks {
		queue <- taskItem{index: i, task: t}
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < min(p.workers, len(tasks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				out[item.index] = runTask(item.task)
			}
		}()
	}
	wg.Wait()
	return out
}

func runTask(t Task) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = Outcome{ID: t.ID, Status: StatusFailed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	o = t.Run()
	o.ID = t.ID
	return o
}

// ByID indexes outcomes by their output ID.
func ByID(outcomes []Outcome) map[string]Outcome {
	m := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		m[o.ID] = o
	}
	return m
}
