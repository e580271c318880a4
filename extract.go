package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SayaAndy/saya-today-gallery/internal/frontmatter"
	"github.com/SayaAndy/saya-today-gallery/internal/mdimages"
)

type ExtractCmd struct {
	Placeholder string   `short:"p" help:"Caption for images without alt text" default:"untitled"`
	Files       []string `arg:"" optional:"" type:"existingfile" help:"Markdown files to scan, standard input when omitted"`
}

type extractedDocument struct {
	Source string                    `json:"source"`
	Title  string                    `json:"title,omitempty"`
	Images []mdimages.ImageReference `json:"images"`
}

func (e *ExtractCmd) Run() error {
	return e.run(os.Stdin, os.Stdout)
}

func (e *ExtractCmd) run(stdin io.Reader, stdout io.Writer) error {
	extractor := mdimages.Extractor{Placeholder: e.Placeholder}
	documents := make([]extractedDocument, 0, max(len(e.Files), 1))

	if len(e.Files) == 0 {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("fail to read standard input: %w", err)
		}
		document, err := extractDocument(extractor, "-", content)
		if err != nil {
			return err
		}
		documents = append(documents, document)
	}

	for _, path := range e.Files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("fail to read '%s': %w", path, err)
		}
		document, err := extractDocument(extractor, path, content)
		if err != nil {
			return err
		}
		slog.Debug("extracted images", slog.String("source", path), slog.Int("count", len(document.Images)))
		documents = append(documents, document)
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(documents)
}

func extractDocument(extractor mdimages.Extractor, source string, content []byte) (extractedDocument, error) {
	metadata, markdown, err := frontmatter.ParseFrontmatter(content)
	if err != nil {
		return extractedDocument{}, fmt.Errorf("fail to parse front matter of '%s': %w", source, err)
	}

	document := extractedDocument{
		Source: source,
		Images: extractor.Extract(string(markdown)),
	}
	if metadata != nil {
		document.Title = metadata.Title
	}
	return document, nil
}
