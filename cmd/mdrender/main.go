// Command mdrender renders Markdown, text, HTML, CSV, PDF and DOCX sources
// to HTML fragments.
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: mdrender [flags] [file...]")
	fmt.Fprintln(w, "Reads stdin as Markdown when no file is given.")
}
