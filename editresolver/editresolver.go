// Package editresolver implements the Edit Resolver (spec §4.3): it maps
// an agent's symbolic EditorOperation onto concrete character offsets in a
// document body using seven progressive-match strategies, falling back
// from the most precise to the most permissive until one succeeds.
package editresolver

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// OpType enumerates the kinds of symbolic edit operation an agent may emit.
type OpType string

const (
	OpReplaceRange      OpType = "replace_range"
	OpDeleteRange       OpType = "delete_range"
	OpInsertAfterHeading OpType = "insert_after_heading"
	OpInsertAfter       OpType = "insert_after"
)

// Operation is an agent-emitted symbolic edit, before resolution.
type Operation struct {
	OpType         OpType
	Start          *int
	End            *int
	Text           string
	OriginalText   string
	AnchorText     string
	OccurrenceIndex int
	Confidence     float64
}

// Resolved is a concrete, applicable edit.
type Resolved struct {
	Start      int
	End        int
	Text       string
	Confidence float64
}

// strategy identifies which of the seven resolution strategies produced a
// Resolved, useful for logging/metrics.
type strategy string

const (
	strategyExactOffsets    strategy = "exact_offsets"
	strategyAnchorMatch     strategy = "anchor_match"
	strategyOriginalSearch  strategy = "original_text_search"
	strategyWhitespaceMatch strategy = "whitespace_normalised_search"
	strategyPrefixSuffix    strategy = "prefix_suffix_anchor"
	strategyEmptyFile       strategy = "empty_file_fallback"
	strategyCursor          strategy = "cursor_fallback"
)

// prefixSuffixTokens is the default token count used by strategy 5.
const prefixSuffixTokens = 8

var comparisonSanitizer = bluemonday.StrictPolicy()

// Resolve maps op onto body, trying each strategy in spec order and
// returning the first that succeeds. fmEnd is the byte offset immediately
// after the document's frontmatter block (0 if there is none). cursorOffset
// is the editor's current cursor position, or nil if unknown.
//
// Resolve never mutates body.
func Resolve(body string, op Operation, fmEnd int, cursorOffset *int) (Resolved, bool) {
	for _, try := range []func(string, Operation, int, *int) (Resolved, bool){
		resolveExactOffsets,
		resolveAnchorMatch,
		resolveOriginalTextSearch,
		resolveWhitespaceNormalised,
		resolvePrefixSuffix,
		resolveEmptyFile,
		resolveCursorFallback,
	} {
		if r, ok := try(body, op, fmEnd, cursorOffset); ok {
			r = clampToFrontmatter(r, fmEnd)
			return r, true
		}
	}
	return Resolved{}, false
}

func clampToFrontmatter(r Resolved, fmEnd int) Resolved {
	if r.Start < fmEnd {
		r.Start = fmEnd
	}
	if r.End < fmEnd {
		r.End = fmEnd
	}
	return r
}

// resolveExactOffsets is strategy 1.
func resolveExactOffsets(body string, op Operation, fmEnd int, _ *int) (Resolved, bool) {
	if op.Start == nil || op.End == nil {
		return Resolved{}, false
	}
	start, end := *op.Start, *op.End
	if start < 0 || end > len(body) || start > end {
		return Resolved{}, false
	}
	if op.OriginalText != "" && normaliseWhitespace(body[start:end]) != normaliseWhitespace(op.OriginalText) {
		return Resolved{}, false
	}
	return Resolved{Start: start, End: end, Text: op.Text, Confidence: 1.0}, true
}

// resolveAnchorMatch is strategy 2, used by insert_after_heading.
func resolveAnchorMatch(body string, op Operation, _ int, _ *int) (Resolved, bool) {
	if op.OpType != OpInsertAfterHeading || op.AnchorText == "" {
		return Resolved{}, false
	}

	positions := allIndexes(body, op.AnchorText)
	if len(positions) == 0 {
		return Resolved{}, false
	}

	idx := op.OccurrenceIndex
	if idx < 0 || idx >= len(positions) {
		idx = 0
	}
	anchorPos := positions[idx]

	lineEnd := strings.IndexByte(body[anchorPos+len(op.AnchorText):], '\n')
	var insertAt int
	if lineEnd == -1 {
		insertAt = len(body)
	} else {
		insertAt = anchorPos + len(op.AnchorText) + lineEnd + 1
	}

	confidence := 0.9
	if len(positions) > 1 {
		confidence = 0.7
	}

	return Resolved{Start: insertAt, End: insertAt, Text: op.Text + "\n", Confidence: confidence}, true
}

// resolveOriginalTextSearch is strategy 3.
func resolveOriginalTextSearch(body string, op Operation, _ int, cursorOffset *int) (Resolved, bool) {
	if op.OriginalText == "" {
		return Resolved{}, false
	}
	return searchVerbatim(body, op, op.OriginalText, cursorOffset, 0.9)
}

// resolveWhitespaceNormalised is strategy 4. It builds a whitespace-tolerant
// regex from op.OriginalText (any HTML the agent may have echoed back from
// rendered markdown is stripped from the comparison copy only, never from
// body) and matches it directly against body, so the resulting offsets
// still index into the real, unmodified document.
func resolveWhitespaceNormalised(body string, op Operation, _ int, cursorOffset *int) (Resolved, bool) {
	if op.OriginalText == "" {
		return Resolved{}, false
	}

	target := comparisonCopy(op.OriginalText)
	pattern := whitespaceTolerantPattern(target)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Resolved{}, false
	}

	matches := re.FindAllStringIndex(body, -1)
	if len(matches) == 0 {
		return Resolved{}, false
	}

	idx := op.OccurrenceIndex
	if idx < 0 || idx >= len(matches) {
		if cursorOffset != nil {
			idx = closestMatchOccurrence(matches, *cursorOffset)
		} else {
			idx = 0
		}
	}

	m := matches[idx]
	return Resolved{Start: m[0], End: m[1], Text: op.Text, Confidence: 0.75}, true
}

// whitespaceTolerantPattern quotes s for literal matching, then replaces
// every run of whitespace with \s+ so differing indentation/line-wrap in
// the live document still matches the agent's verbatim-quoted text.
func whitespaceTolerantPattern(s string) string {
	fields := whitespaceRun.Split(strings.TrimSpace(s), -1)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(quoted, `\s+`)
}

func closestMatchOccurrence(matches [][]int, cursorOffset int) int {
	best := 0
	bestDist := abs(matches[0][0] - cursorOffset)
	for i, m := range matches[1:] {
		if d := abs(m[0] - cursorOffset); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}

// searchVerbatim finds the op.OccurrenceIndex-th occurrence of target in
// body. If that index is out of range it takes the occurrence closest to
// cursorOffset, or the first one when there is no cursor. It fails only
// when target does not occur at all.
func searchVerbatim(body string, op Operation, target string, cursorOffset *int, confidence float64) (Resolved, bool) {
	positions := allIndexes(body, target)
	if len(positions) == 0 {
		return Resolved{}, false
	}

	idx := op.OccurrenceIndex
	if idx < 0 || idx >= len(positions) {
		if cursorOffset != nil {
			idx = closestOccurrence(positions, *cursorOffset)
		} else {
			idx = 0
		}
	}

	start := positions[idx]
	end := start + len(target)
	return Resolved{Start: start, End: end, Text: op.Text, Confidence: confidence}, true
}

func closestOccurrence(positions []int, cursorOffset int) int {
	best := 0
	bestDist := abs(positions[0] - cursorOffset)
	for i, p := range positions[1:] {
		if d := abs(p - cursorOffset); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// resolvePrefixSuffix is strategy 5.
func resolvePrefixSuffix(body string, op Operation, _ int, _ *int) (Resolved, bool) {
	if op.OriginalText == "" {
		return Resolved{}, false
	}

	tokens := strings.Fields(op.OriginalText)
	if len(tokens) == 0 {
		return Resolved{}, false
	}

	n := prefixSuffixTokens
	if n > len(tokens) {
		n = len(tokens)
	}
	prefix := strings.Join(tokens[:n], " ")
	suffix := strings.Join(tokens[len(tokens)-n:], " ")

	prefixPos := strings.Index(body, prefix)
	if prefixPos == -1 {
		return Resolved{}, false
	}

	suffixPos := strings.Index(body[prefixPos:], suffix)
	if suffixPos == -1 {
		return Resolved{}, false
	}

	start := prefixPos
	end := prefixPos + suffixPos + len(suffix)
	return Resolved{Start: start, End: end, Text: op.Text, Confidence: 0.5}, true
}

// resolveEmptyFile is strategy 6.
func resolveEmptyFile(body string, _ Operation, fmEnd int, _ *int) (Resolved, bool) {
	if fmEnd > len(body) {
		return Resolved{}, false
	}
	if strings.TrimSpace(body[fmEnd:]) != "" {
		return Resolved{}, false
	}
	return Resolved{Start: fmEnd, End: fmEnd, Confidence: 0.7}, true
}

// resolveCursorFallback is strategy 7.
func resolveCursorFallback(_ string, op Operation, fmEnd int, cursorOffset *int) (Resolved, bool) {
	if cursorOffset == nil || *cursorOffset < fmEnd {
		return Resolved{}, false
	}
	return Resolved{Start: *cursorOffset, End: *cursorOffset, Text: op.Text, Confidence: 0.3}, true
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func normaliseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

var markdownExtensions = parser.CommonExtensions | parser.AutoHeadingIDs

// comparisonCopy renders s as Markdown to HTML (gomarkdown/markdown) and
// strips every tag from the result with bluemonday's strict policy, so
// text an agent echoed back as rendered Markdown compares as plain text.
// Only strategy 4 uses it, on its matching copy of op.OriginalText; it is
// never applied to the body that is actually written back.
func comparisonCopy(s string) string {
	p := parser.NewWithExtensions(markdownExtensions)
	doc := p.Parse([]byte(s))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.Render(doc, renderer)
	return string(comparisonSanitizer.SanitizeBytes(rendered))
}

func allIndexes(haystack, needle string) []int {
	if needle == "" {
		return nil
	}
	var positions []int
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], needle)
		if idx == -1 {
			break
		}
		positions = append(positions, offset+idx)
		offset += idx + len(needle)
	}
	return positions
}
