package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/dgallion1/mdsite/internal/chunker"
	"github.com/dgallion1/mdsite/internal/pipeline"
	"github.com/dgallion1/mdsite/internal/source"
)

// Exit codes.
const (
	ExitSuccess = 0 // Every input rendered
	ExitFailed  = 1 // At least one input failed
	ExitUsage   = 2 // Invalid flags
)

const stdinName = "stdin.md"

type options struct {
	outDir       string
	index        bool
	title        string
	verbose      bool
	pdftotext    bool
	chunkSize    int
	chunkOverlap int
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	fs := flag.NewFlagSet("mdrender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		usage(stderr)
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.outDir, "out", "o", "", "write {slug}.html files to this directory instead of stdout")
	fs.BoolVar(&opts.index, "index", false, "also write {slug}.index.json search index files (requires --out)")
	fs.StringVarP(&opts.title, "title", "t", "", "page title (single input only)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	fs.BoolVar(&opts.pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs the built-in reader cannot handle")
	fs.IntVar(&opts.chunkSize, "chunk-size", chunker.DefaultConfig().ChunkSize, "index chunk size in estimated tokens")
	fs.IntVar(&opts.chunkOverlap, "chunk-overlap", chunker.DefaultConfig().ChunkOverlap, "index chunk overlap in estimated tokens")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	files := fs.Args()
	if opts.index && opts.outDir == "" {
		return nil, nil, errors.New("--index requires --out")
	}
	if opts.title != "" && len(files) > 1 {
		return nil, nil, errors.New("--title needs a single input")
	}
	return opts, files, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, files, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(stderr, "mdrender:", err)
		return ExitUsage
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			log.Error("create output directory", "dir", opts.outDir, "error", err)
			return ExitFailed
		}
	}

	r := &fileRenderer{
		opts: opts,
		log:  log,
		out:  stdout,
		renderer: &pipeline.Renderer{
			ChunkConfig: chunker.Config{ChunkSize: opts.chunkSize, ChunkOverlap: opts.chunkOverlap},
			Stats:       pipeline.NewRenderStats(0),
		},
	}

	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			log.Error("read stdin", "error", err)
			return ExitFailed
		}
		if err := r.render(stdinName, data); err != nil {
			log.Error("render failed", "file", "-", "error", err)
			return ExitFailed
		}
		return ExitSuccess
	}

	failed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err == nil {
			err = r.render(path, data)
		}
		if err != nil {
			log.Error("render failed", "file", path, "error", err)
			failed++
		}
	}

	snap := r.renderer.Stats.Snapshot()
	log.Debug("done", "files", len(files), "failed", failed, "avg_ms", snap.AvgMs, "max_ms", snap.MaxMs)
	if failed > 0 {
		return ExitFailed
	}
	return ExitSuccess
}

type fileRenderer struct {
	opts     *options
	log      *slog.Logger
	out      io.Writer
	renderer *pipeline.Renderer
}

func (r *fileRenderer) render(path string, data []byte) error {
	doc, err := pipeline.Import(filepath.Base(path), data, source.Options{PDFFallbackPdftotext: r.opts.pdftotext})
	if err != nil {
		return err
	}
	if r.opts.title != "" {
		doc.Title = r.opts.title
		if doc.Meta.Slug == "" {
			doc.Slug = ""
		}
	}

	res, err := r.renderer.Render(doc)
	if err != nil {
		return err
	}
	r.log.Debug("rendered", "file", path, "slug", res.Slug, "blocks", res.Blocks, "index_chunks", len(res.Index))

	if r.opts.outDir == "" {
		_, err := fmt.Fprintln(r.out, res.HTML)
		return err
	}

	htmlPath := filepath.Join(r.opts.outDir, res.Slug+".html")
	if err := os.WriteFile(htmlPath, []byte(res.HTML+"\n"), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	r.log.Info("wrote page", "path", htmlPath)

	if !r.opts.index {
		return nil
	}
	data, err = json.MarshalIndent(pipeline.ResultIndex(res), "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	indexPath := filepath.Join(r.opts.outDir, res.Slug+".index.json")
	if err := os.WriteFile(indexPath, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
