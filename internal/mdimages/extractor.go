// Package mdimages finds the images embedded in a Markdown body.
//
// Both reference-style (![alt][id] with a separate "[id]: url" line) and
// inline-style (![alt](url)) images are recognized. Results list every
// resolved reference-style image first, then every inline-style image, each
// block in document order. Callers pick the cover as the first result, so this
// order is part of the contract.
package mdimages

import (
	"regexp"
	"strings"
)

// Untitled is the caption used when an image has no alt text.
const Untitled = "untitled"

var (
	definitionRe  = regexp.MustCompile(`(?m)^\s*\[([^\]]+)\]:\s*(\S+)(?:\s+["']([^"']+)["'])?\s*$`)
	referenceRe   = regexp.MustCompile(`!\[([^\]]*)\]\[([^\]]+)\]`)
	inlineImageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)
)

type ImageReference struct {
	Caption string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
}

// Extractor holds the caption used for images without alt text. The zero
// value falls back to Untitled.
type Extractor struct {
	Placeholder string
}

// Extract runs the default Extractor over text.
func Extract(text string) []ImageReference {
	return Extractor{}.Extract(text)
}

// Extract returns every image in text. Reference-style images whose id has
// no definition are dropped. The result is never nil.
func (e Extractor) Extract(text string) []ImageReference {
	images := make([]ImageReference, 0)

	definitions := Definitions(text)
	for _, match := range referenceRe.FindAllStringSubmatch(text, -1) {
		url, ok := definitions[strings.TrimSpace(match[2])]
		if !ok {
			continue
		}
		images = append(images, ImageReference{
			Caption: e.caption(match[1]),
			URL:     url,
		})
	}

	for _, match := range inlineImageRe.FindAllStringSubmatch(text, -1) {
		images = append(images, ImageReference{
			Caption: e.caption(match[1]),
			URL:     strings.TrimSpace(match[2]),
		})
	}

	return images
}

// Definitions collects "[id]: url" lines. An optional quoted title is
// accepted and ignored; when an id repeats, the last line wins.
func Definitions(text string) map[string]string {
	definitions := make(map[string]string)
	for _, match := range definitionRe.FindAllStringSubmatch(text, -1) {
		definitions[strings.TrimSpace(match[1])] = strings.TrimSpace(match[2])
	}
	return definitions
}

func (e Extractor) caption(alt string) string {
	if alt = strings.TrimSpace(alt); alt != "" {
		return alt
	}
	if e.Placeholder != "" {
		return e.Placeholder
	}
	return Untitled
}
