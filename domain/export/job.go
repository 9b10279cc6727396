package export

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// State of an export job
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateEmpty      State = "empty"
	StateRunning    State = "running"
	StateFinalizing State = "finalizing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateEmpty, StateRunning},
	StateEmpty:      {StateIdle},
	StateRunning:    {StateFinalizing, StateFailed},
	StateFinalizing: {StateSucceeded, StateFailed},
	StateSucceeded:  {StateIdle},
	StateFailed:     {StateIdle},
}

// CanTransition reports whether from -> to is a legal job transition
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SkippedItem is a bulk item that failed and was left out of the archive
type SkippedItem struct {
	Index  int    `json:"index"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Result summarizes one export job
type Result struct {
	JobID        string        `json:"job_id"`
	Mode         style.Mode    `json:"mode"`
	Format       style.Format  `json:"format"`
	Requested    int           `json:"requested"`
	Succeeded    int           `json:"succeeded"`
	Skipped      int           `json:"skipped"`
	SkippedItems []SkippedItem `json:"skipped_items,omitempty"`
	State        State         `json:"state"`
	History      []State       `json:"history,omitempty"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// job tracks one run through the state machine
type job struct {
	result Result
	state  State
}

func newJob(mode style.Mode, format style.Format, requested int) *job {
	return &job{
		state: StateIdle,
		result: Result{
			JobID:     uuid.New().String(),
			Mode:      mode,
			Format:    format,
			Requested: requested,
			StartedAt: time.Now(),
			History:   []State{StateIdle},
		},
	}
}

// advance moves the job to the next state. An illegal transition is logged
// and leaves the job where it was.
func (j *job) advance(ctx context.Context, to State) bool {
	if !CanTransition(j.state, to) {
		logger.CtxWarn(ctx, constant.ErrInvalidTransition, logger.LoggerInfo{
			ContextFunction: constant.CtxDomain,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeInvalidTransition,
				Message: constant.ErrInvalidTransition,
				Type:    constant.ErrTypeDomain,
			},
			Data: map[string]interface{}{
				constant.DataJobID: j.result.JobID,
				constant.DataFrom:  j.state,
				constant.DataTo:    to,
			},
		})
		return false
	}
	j.state = to
	j.result.History = append(j.result.History, to)
	if to != StateIdle {
		j.result.State = to
	}
	return true
}

func (j *job) skip(index int, value string, err error) {
	j.result.Skipped++
	j.result.SkippedItems = append(j.result.SkippedItems, SkippedItem{
		Index:  index,
		Value:  value,
		Reason: err.Error(),
	})
}

// finish returns the job to idle and stamps the result
func (j *job) finish(ctx context.Context, err error) Result {
	if err != nil {
		j.result.Error = err.Error()
	}
	j.advance(ctx, StateIdle)
	j.result.FinishedAt = time.Now()
	return j.result
}

// Guard is the busy flag of one view. At most one bulk export holds it.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire takes the guard, or reports false if a job already holds it
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a job holds the guard
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
