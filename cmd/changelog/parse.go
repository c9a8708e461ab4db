package main

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Release is one version section of the changelog.
type Release struct {
	Version string
	Date    string
	Body    string
	// Line is the 1-based source line of the section heading.
	Line int
	// Sections are the change-type headings (Added, Fixed, ...) under
	// this release, keyed by source line.
	Sections map[int]string
}

// History is a parsed Keep a Changelog document.
type History struct {
	Title    string
	Releases []Release
	Links    map[string]string
}

// Find returns the release for a version, tolerating a leading "v".
func (h *History) Find(version string) *Release {
	want := strings.TrimPrefix(version, "v")
	for i := range h.Releases {
		if strings.TrimPrefix(h.Releases[i].Version, "v") == want {
			return &h.Releases[i]
		}
	}
	return nil
}

// ParseHistory parses a Keep a Changelog formatted markdown document.
func ParseHistory(source []byte) (*History, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	history := &History{Links: map[string]string{}}
	for _, ref := range ctx.References() {
		history.Links[string(ref.Label())] = string(ref.Destination())
	}

	// Byte offsets of each release heading, used afterwards to slice the
	// body text between consecutive headings out of the raw source.
	type section struct {
		release    Release
		start, end int
	}
	var sections []section

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		seg := heading.Lines().At(0)
		label := headingText(heading, source)

		switch heading.Level {
		case 1:
			if history.Title == "" {
				history.Title = label
			}
		case 2:
			version, date := splitVersionHeading(label)
			sections = append(sections, section{
				release: Release{
					Version:  version,
					Date:     date,
					Line:     lineAt(source, seg.Start),
					Sections: map[int]string{},
				},
				start: heading.Lines().At(heading.Lines().Len() - 1).Stop,
				end:   len(source),
			})
		case 3:
			if len(sections) > 0 {
				last := &sections[len(sections)-1]
				last.release.Sections[lineAt(source, seg.Start)] = label
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	for i := range sections {
		if i+1 < len(sections) {
			if next, ok := lineStart(source, sections[i+1].release.Line); ok {
				sections[i].end = next
			}
		}
		body := source[sections[i].start:sections[i].end]
		sections[i].release.Body = strings.TrimSpace(string(body))
		history.Releases = append(history.Releases, sections[i].release)
	}

	return history, nil
}

// headingText flattens a heading's inline content, descending into links
// so "[1.2.0] - 2024-01-01" reads the same with or without a link.
func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if textNode, ok := child.(*ast.Text); ok {
				buf.Write(textNode.Segment.Value(source))
				continue
			}
			walk(child)
		}
	}
	walk(node)
	return buf.String()
}

// splitVersionHeading handles both "[1.2.0] - 2024-01-01" and the
// reference-link form where goldmark has already consumed the brackets.
func splitVersionHeading(label string) (version, date string) {
	label = strings.TrimSpace(label)
	if idx := strings.Index(label, " - "); idx != -1 {
		version, date = label[:idx], strings.TrimSpace(label[idx+3:])
	} else {
		version = label
	}
	version = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(version), "["), "]")
	return version, date
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}

// lineStart returns the byte offset where a 1-based line begins.
func lineStart(source []byte, line int) (int, bool) {
	offset := 0
	for current := 1; current < line; current++ {
		next := bytes.IndexByte(source[offset:], '\n')
		if next < 0 {
			return 0, false
		}
		offset += next + 1
	}
	return offset, true
}
