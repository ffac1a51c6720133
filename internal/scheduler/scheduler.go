package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/logger"
)

const runTimeout = 2 * time.Minute

// Task is one unit of background work. Its result is kept for the status page.
type Task func(ctx context.Context) (any, error)

type Status struct {
	Name         string        `json:"name"`
	Interval     string        `json:"interval"`
	Running      bool          `json:"running"`
	Runs         int           `json:"runs"`
	LastRun      *time.Time    `json:"last_run"`
	LastDuration time.Duration `json:"last_duration_ns"`
	LastError    string        `json:"last_error,omitempty"`
	LastResult   any           `json:"last_result,omitempty"`
}

// Job runs a Task on a ticker. A gate, when set, decides on each tick whether
// the task is due.
type Job struct {
	name       string
	interval   time.Duration
	task       Task
	gate       func(now time.Time) bool
	runOnStart bool
	now        func() time.Time

	runMu sync.Mutex

	mu     sync.RWMutex
	status Status

	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

type Option func(*Job)

// WithGate makes ticks conditional.
func WithGate(gate func(now time.Time) bool) Option {
	return func(j *Job) { j.gate = gate }
}

// RunOnStart executes the task once as soon as the job starts.
func RunOnStart() Option {
	return func(j *Job) { j.runOnStart = true }
}

func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

func NewJob(name string, interval time.Duration, task Task, opts ...Option) *Job {
	j := &Job{
		name:     name,
		interval: interval,
		task:     task,
		now:      time.Now,
		status:   Status{Name: name, Interval: interval.String()},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Job) Name() string { return j.name }

// Start is non-blocking; call Stop to end the loop.
func (j *Job) Start(ctx context.Context) {
	logger.Get().Info("starting background job", "job", j.name, "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)
	j.done = make(chan struct{})

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		if j.runOnStart {
			_, _ = j.Run(ctx)
		}

		for {
			select {
			case <-j.ticker.C:
				if j.gate == nil || j.gate(j.now()) {
					_, _ = j.Run(ctx)
				}
			case <-j.done:
				logger.Get().Info("background job stopped", "job", j.name)
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *Job) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	if j.done != nil {
		select {
		case <-j.done:
		default:
			close(j.done)
		}
	}
	j.wg.Wait()
}

// Run executes the task now. Concurrent calls queue so a tick and a manual
// trigger never overlap.
func (j *Job) Run(ctx context.Context) (any, error) {
	j.runMu.Lock()
	defer j.runMu.Unlock()

	j.mu.Lock()
	j.status.Running = true
	j.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	started := j.now()
	clock := time.Now()
	result, err := j.task(runCtx)
	elapsed := time.Since(clock)

	j.mu.Lock()
	j.status.Running = false
	j.status.Runs++
	j.status.LastRun = &started
	j.status.LastDuration = elapsed
	j.status.LastResult = result
	j.status.LastError = ""
	if err != nil {
		j.status.LastError = err.Error()
	}
	j.mu.Unlock()

	if err != nil {
		logger.Get().Error("background job failed", "job", j.name, "error", err)
	} else {
		logger.Get().Debug("background job finished", "job", j.name, "took", elapsed.String())
	}
	return result, err
}

func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// DailyAt returns a gate that opens once per calendar day in loc, on the first
// tick whose local hour equals hour.
func DailyAt(hour int, loc *time.Location) func(now time.Time) bool {
	var (
		mu      sync.Mutex
		lastDay string
	)
	return func(now time.Time) bool {
		local := now.In(loc)
		if local.Hour() != hour {
			return false
		}
		day := local.Format("2006-01-02")

		mu.Lock()
		defer mu.Unlock()
		if day == lastDay {
			return false
		}
		lastDay = day
		return true
	}
}

// ======================================================
// SCHEDULER
// ======================================================

type Scheduler struct {
	jobs map[string]*Job
}

func New(jobs ...*Job) *Scheduler {
	s := &Scheduler{jobs: make(map[string]*Job, len(jobs))}
	for _, j := range jobs {
		s.jobs[j.name] = j
	}
	return s
}

func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		j.Start(ctx)
	}
}

func (s *Scheduler) Stop() {
	for _, j := range s.jobs {
		j.Stop()
	}
}

func (s *Scheduler) Job(name string) (*Job, bool) {
	j, ok := s.jobs[name]
	return j, ok
}

func (s *Scheduler) Statuses() []Status {
	out := make([]Status, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Status())
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}
