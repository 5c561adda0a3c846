package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/mdsite/internal/inline"
	"github.com/dgallion1/mdsite/internal/source"
)

func TestRenderer_Render(t *testing.T) {
	r := &Renderer{}
	doc := &source.Document{
		Title:    "Café",
		Markdown: "Intro paragraph with enough words to pass the minimum chunk size.\n\n## Setup\n\n- one\n- two",
	}
	res, err := r.Render(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Slug != "cafe" {
		t.Errorf("slug = %q", res.Slug)
	}
	if !strings.HasSuffix(res.HTML, "<h2>Setup</h2><ul><li>one</li><li>two</li></ul></div>") {
		t.Errorf("html = %s", res.HTML)
	}
	if res.Blocks != 3 {
		t.Errorf("blocks = %d", res.Blocks)
	}
	if res.ContentHash != ContentHashHex([]byte(doc.Markdown)) {
		t.Error("content hash should cover the markdown")
	}
	if len(res.Index) == 0 || res.Index[0].Anchor != "" {
		t.Errorf("index = %+v", res.Index)
	}
}

func TestRenderer_Links(t *testing.T) {
	md := "See [docs](/docs) and ![logo](/logo.png).\n\n" +
		"- [docs again](/docs)\n- [site](https://example.com)\n\n" +
		"```\n[not a link](/code)\n```"
	res, err := (&Renderer{}).Render(&source.Document{Title: "Links", Markdown: md})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/docs", "/logo.png", "https://example.com"}
	if strings.Join(res.Links, " ") != strings.Join(want, " ") {
		t.Errorf("links = %v, want %v", res.Links, want)
	}

	res, err = (&Renderer{}).Render(&source.Document{Title: "Plain", Markdown: "no targets here"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Links != nil {
		t.Errorf("links = %v, want none", res.Links)
	}
}

func TestRenderer_KeepsSlug(t *testing.T) {
	res, err := (&Renderer{}).Render(&source.Document{Title: "T", Slug: "fixed", Markdown: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Slug != "fixed" {
		t.Errorf("slug = %q", res.Slug)
	}
}

func TestRenderer_Errors(t *testing.T) {
	_, err := (&Renderer{}).Render(&source.Document{Title: "T", Markdown: "`open code"})
	if !errors.Is(err, inline.ErrUnbalancedDelimiter) {
		t.Fatalf("expected unbalanced delimiter, got %v", err)
	}
	var ude *inline.UnbalancedDelimiterError
	if !errors.As(err, &ude) || ude.Delimiter != "`" {
		t.Errorf("expected typed error for backtick, got %v", err)
	}
}

func TestImport(t *testing.T) {
	doc, err := Import("notes.txt", []byte("one\n\ntwo"), source.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Markdown != "one\n\ntwo" || doc.Title != "notes" {
		t.Errorf("doc = %+v", doc)
	}
	if _, err := Import("notes.xyz", nil, source.Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
