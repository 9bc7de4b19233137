// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownInstance
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.75rem; }
code, pre { font-family: monospace; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML converts a Markdown report into a standalone HTML page.
func HTML(title string, source []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown().Convert(source, &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return fmt.Appendf(nil, htmlPage, html.EscapeString(title), body.String()), nil
}

// WriteFiles writes content to dir/<id>.md and, when withHTML is set,
// its HTML rendering to dir/<id>.html. It returns the paths written.
func WriteFiles(dir, id string, content []byte, withHTML bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	markdownPath := filepath.Join(dir, id+".md")
	if err := os.WriteFile(markdownPath, content, 0o644); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	paths := []string{markdownPath}

	if withHTML {
		page, err := HTML(id, content)
		if err != nil {
			return paths, err
		}
		htmlPath := filepath.Join(dir, id+".html")
		if err := os.WriteFile(htmlPath, page, 0o644); err != nil {
			return paths, fmt.Errorf("writing html report: %w", err)
		}
		paths = append(paths, htmlPath)
	}
	return paths, nil
}
