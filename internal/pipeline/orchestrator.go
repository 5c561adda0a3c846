package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/mdsite/internal/chunker"
	"github.com/dgallion1/mdsite/internal/config"
	"github.com/dgallion1/mdsite/internal/sitestore"
	"github.com/dgallion1/mdsite/internal/source"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator manages the page rendering pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	store    *sitestore.Client
	stats    *RenderStats
	renderer *Renderer
	log      *slog.Logger
	cfg      config.Config

	publishSem chan struct{}

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. store may be nil, which turns
// publishing off.
func NewOrchestrator(cfg config.Config, store *sitestore.Client, log *slog.Logger) *Orchestrator {
	stats := NewRenderStats(cfg.StatsWindow)
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		store: store,
		stats: stats,
		renderer: &Renderer{
			ChunkConfig: chunker.Config{
				ChunkSize:    cfg.IndexChunkSize,
				ChunkOverlap: cfg.IndexChunkOverlap,
			},
			Stats: stats,
		},
		log:        log,
		cfg:        cfg,
		publishSem: make(chan struct{}, max(cfg.MaxConcurrentPublish, 1)),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := source.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.renderer, o.store, o.cfg.SiteName, o.log, opts, o.publishSem)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(cleanupInterval(o.cfg.JobTTL))
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func cleanupInterval(ttl time.Duration) time.Duration {
	return min(5*time.Minute, max(ttl/2, time.Second))
}

// Stop shuts the workers down. Jobs still in the queue are not processed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the render latency tracker.
func (o *Orchestrator) Stats() *RenderStats {
	return o.stats
}

// Renderer returns the renderer workers use, for synchronous requests.
func (o *Orchestrator) Renderer() *Renderer {
	return o.renderer
}

// Store returns the page store client, or nil when publishing is off.
func (o *Orchestrator) Store() *sitestore.Client {
	return o.store
}
