package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/mdsite/internal/doctree"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusImporting, "importing"},
		{StatusRendering, "rendering"},
		{StatusIndexing, "indexing"},
		{StatusPublishing, "publishing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusRendering,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "rendering")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("import: bad header")
	job.AddError("publish: status 400")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "import: bad header" {
		t.Errorf("expected first error %q, got %q", "import: bad header", snap.Progress.Errors[0])
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("notes.md", []byte("# Notes"))
	if job.Result() != nil {
		t.Fatal("expected no result before rendering")
	}
	job.Title = "Requested"

	snap := job.Snapshot()
	if snap.Title != "Requested" {
		t.Errorf("expected requested title before rendering, got %q", snap.Title)
	}

	job.SetResult(&Result{
		Title:       "Notes",
		Slug:        "notes",
		HTML:        "<div><h1>Notes</h1></div>",
		ContentHash: "abc",
		Blocks:      1,
		Index:       []doctree.Chunk{{Text: "a"}, {Text: "b"}},
	})
	job.MarkPublished()

	snap = job.Snapshot()
	if snap.Title != "Notes" || snap.Slug != "notes" || snap.ContentHash != "abc" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Progress.Blocks != 1 || snap.Progress.IndexChunks != 2 || !snap.Progress.Published {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if job.Result().HTML != "<div><h1>Notes</h1></div>" {
		t.Errorf("result html = %q", job.Result().HTML)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("a.txt", []byte("x"))
	if len(job.ID) != 26 {
		t.Errorf("expected ULID job id, got %q", job.ID)
	}
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("status = %q/%q", job.Status, job.Phase)
	}
	if string(job.FileData()) != "x" {
		t.Errorf("file data = %q", job.FileData())
	}
	job.releaseFileData()
	if job.FileData() != nil {
		t.Error("expected file data released")
	}
}

func TestJobStatus_Done(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		StatusQueued:     false,
		StatusRendering:  false,
		StatusPublishing: false,
		StatusCompleted:  true,
		StatusFailed:     true,
		StatusDupSkipped: true,
	} {
		if got := status.Done(); got != want {
			t.Errorf("%s.Done() = %v, want %v", status, got, want)
		}
	}
}

func TestResultIndex(t *testing.T) {
	if got := ResultIndex(nil); got == nil || len(got) != 0 {
		t.Errorf("ResultIndex(nil) = %v", got)
	}
	r := &Result{Index: []doctree.Chunk{{Text: "x"}}}
	if got := ResultIndex(r); len(got) != 1 {
		t.Errorf("ResultIndex = %v", got)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
