package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/mdsite/internal/sitestore"
	"github.com/dgallion1/mdsite/internal/slug"
	"github.com/dgallion1/mdsite/internal/source"
)

// Worker processes a single render job.
type Worker struct {
	renderer *Renderer
	store    *sitestore.Client // nil when publishing is off
	site     string
	log      *slog.Logger
	opts     source.Options

	// publishSem bounds concurrent page store writes across workers.
	publishSem chan struct{}
	backoff    func(int) time.Duration
}

func NewWorker(renderer *Renderer, store *sitestore.Client, site string, log *slog.Logger, opts source.Options, publishSem chan struct{}) *Worker {
	return &Worker{
		renderer:   renderer,
		store:      store,
		site:       site,
		log:        log,
		opts:       opts,
		publishSem: publishSem,
		backoff:    Backoff,
	}
}

// Process runs import, render, index and publish for a job. Failures are
// recorded on the job; nothing is returned.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer job.releaseFileData()

	// Phase 1: Import
	job.SetStatus(StatusImporting, "importing")
	doc, err := Import(job.Filename, job.FileData(), w.opts)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(fmt.Sprintf("import: %s", err))
		job.SetStatus(StatusFailed, "importing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
		if doc.Meta.Slug == "" {
			doc.Slug = slug.Make(job.Title)
		}
	}
	if job.Slug != "" {
		doc.Slug = job.Slug
	}

	// Phase 2: Render and index
	job.SetStatus(StatusRendering, "rendering")
	result, err := w.renderer.Render(doc)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	job.SetStatus(StatusIndexing, "indexing")
	job.SetResult(result)
	log.Info("rendered page",
		"slug", result.Slug,
		"blocks", result.Blocks,
		"index_chunks", len(result.Index),
		"render_us", result.RenderTime.Microseconds(),
	)

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Publish
	job.SetStatus(StatusPublishing, "publishing")
	if !job.Force {
		ref, err := w.checkDuplicate(ctx, result.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if ref != nil {
			log.Info("duplicate content, skipping", "existing_slug", ref.Slug)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	if err := w.publish(ctx, log, result); err != nil {
		log.Error("publish failed", "error", err)
		job.AddError(fmt.Sprintf("publish: %s", err))
		job.SetStatus(StatusFailed, "publishing")
		return
	}
	job.MarkPublished()
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) publish(ctx context.Context, log *slog.Logger, result *Result) error {
	select {
	case w.publishSem <- struct{}{}:
		defer func() { <-w.publishSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	page := sitestore.Page{
		Title:       result.Title,
		Slug:        result.Slug,
		HTML:        result.HTML,
		ContentHash: result.ContentHash,
		Index:       result.Index,
		Links:       result.Links,
		Meta:        pageMeta(result.Meta),
		UpdatedAt:   time.Now().UTC(),
	}
	pageKey := sitestore.PageKey(w.site, result.Slug)
	err := retry(ctx, log, "put_page", w.backoff, func() error {
		return w.store.PutPage(ctx, pageKey, page)
	})
	if err != nil {
		return err
	}

	// Write hash index for dedup.
	hashKey := sitestore.HashKey(w.site, result.ContentHash)
	err = retry(ctx, log, "put_ref", w.backoff, func() error {
		return w.store.PutRef(ctx, hashKey, sitestore.HashRef{Slug: result.Slug})
	})
	if err != nil {
		log.Error("hash index write failed", "error", err)
	}
	return nil
}

// checkDuplicate looks up a page already published with this content hash.
func (w *Worker) checkDuplicate(ctx context.Context, hash string) (*sitestore.HashRef, error) {
	return w.store.GetRef(ctx, sitestore.HashKey(w.site, hash))
}

func pageMeta(fm source.FrontMatter) map[string]string {
	meta := map[string]string{}
	if fm.Date != "" {
		meta["date"] = fm.Date
	}
	if fm.Draft {
		meta["draft"] = "true"
	}
	for i, tag := range fm.Tags {
		meta[fmt.Sprintf("tag.%d", i)] = tag
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
