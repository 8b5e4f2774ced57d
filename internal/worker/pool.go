package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/metrics"
	"github.com/iconidentify/tubegrab/internal/repository"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// MessageShutdown is recorded on jobs still queued when the pool stops.
const MessageShutdown = "Download cancelled: server shutting down"

// Pool executes download jobs on a fixed number of workers.
// Jobs are dispatched in submission order.
type Pool struct {
	workers         int
	downloadDir     string
	downloadTimeout time.Duration
	jobRepo         repository.JobRepository
	source          downloader.Source
	logger          *slog.Logger

	mu      sync.Mutex
	queue   []domain.JobID
	stopped bool
	wake    chan struct{}

	wg sync.WaitGroup
	// ctx ends the worker loops; runCtx aborts in-flight downloads.
	ctx       context.Context
	cancel    context.CancelFunc
	runCtx    context.Context
	runCancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers         int
	DownloadDir     string
	DownloadTimeout time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	cfg Config,
	jobRepo repository.JobRepository,
	source downloader.Source,
	logger *slog.Logger,
) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}

	ctx, cancel := context.WithCancel(context.Background())
	runCtx, runCancel := context.WithCancel(context.Background())

	return &Pool{
		workers:         cfg.Workers,
		downloadDir:     cfg.DownloadDir,
		downloadTimeout: cfg.DownloadTimeout,
		jobRepo:         jobRepo,
		source:          source,
		logger:          logger,
		wake:            make(chan struct{}, 1),
		ctx:             ctx,
		cancel:          cancel,
		runCtx:          runCtx,
		runCancel:       runCancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues a pending job for execution. It never blocks on worker
// availability.
func (p *Pool) Submit(ctx context.Context, id domain.JobID) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return domain.ErrPoolStopped
	}
	p.queue = append(p.queue, id)
	depth := len(p.queue)
	p.mu.Unlock()

	metrics.SetQueueDepth(depth)
	p.signal()
	return nil
}

// QueueDepth returns the number of jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Stop rejects new submissions, fails jobs that never reached a worker and
// waits up to timeout for in-flight downloads. Downloads still running at
// the deadline are aborted.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	abandoned := p.queue
	p.queue = nil
	p.mu.Unlock()

	p.cancel()
	metrics.SetQueueDepth(0)

	for _, id := range abandoned {
		if _, err := p.jobRepo.Transition(context.Background(), id, domain.JobStateFailed, MessageShutdown); err != nil {
			p.logger.Error("failed to cancel queued job", "job_id", id, "error", err)
			continue
		}
		metrics.RecordJobFinished(string(domain.JobStateFailed), 0)
	}
	if len(abandoned) > 0 {
		p.logger.Warn("cancelled queued jobs", "count", len(abandoned))
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.runCancel()
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-timer.C:
		p.runCancel()
		return ErrShutdownTimeout
	}
}

func (p *Pool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// next blocks until a job is available or the pool stops.
func (p *Pool) next() (domain.JobID, bool) {
	for {
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return "", false
		}
		if len(p.queue) > 0 {
			id := p.queue[0]
			p.queue[0] = ""
			p.queue = p.queue[1:]
			remaining := len(p.queue)
			p.mu.Unlock()

			metrics.SetQueueDepth(remaining)
			// Pass the wakeup on so idle workers drain the rest.
			if remaining > 0 {
				p.signal()
			}
			return id, true
		}
		p.mu.Unlock()

		select {
		case <-p.ctx.Done():
			return "", false
		case <-p.wake:
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	for {
		jobID, ok := p.next()
		if !ok {
			logger.Info("worker stopping")
			return
		}
		p.process(logger.With("job_id", jobID), jobID)
	}
}

func (p *Pool) process(logger *slog.Logger, id domain.JobID) {
	// Registry writes use a fresh context so outcomes are recorded during shutdown.
	ctx := context.Background()

	job, err := p.jobRepo.Transition(ctx, id, domain.JobStateRunning, domain.MessageRunning)
	if err != nil {
		logger.Error("failed to start job", "error", err)
		return
	}

	logger.Info("processing job", "url", job.URL, "format_id", job.FormatID)
	metrics.RecordJobStarted()
	start := time.Now()

	path, err := p.download(job)

	state, message := domain.JobStateCompleted, domain.MessageCompleted
	if err != nil {
		state, message = domain.JobStateFailed, "Download failed: "+err.Error()
	}

	if _, terr := p.jobRepo.Transition(ctx, id, state, message); terr != nil {
		logger.Error("failed to record job outcome", "state", state, "error", terr)
	}
	duration := time.Since(start)
	metrics.RecordJobFinished(string(state), duration)

	if err != nil {
		logger.Error("job failed", "error", err, "duration", duration)
		return
	}
	logger.Info("job completed successfully", "path", path, "duration", duration)
}

func (p *Pool) download(job *domain.Job) (string, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if p.downloadTimeout > 0 {
		ctx, cancel = context.WithTimeout(p.runCtx, p.downloadTimeout)
	} else {
		ctx, cancel = context.WithCancel(p.runCtx)
	}
	defer cancel()

	return p.source.Download(ctx, domain.DownloadRequest{
		URL:       job.URL,
		FormatID:  job.FormatID,
		OutputDir: p.downloadDir,
		BaseName:  job.ID.String(),
	})
}
