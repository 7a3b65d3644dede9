package editresolver

import "testing"

func intPtr(n int) *int { return &n }

func TestResolveExactOffsets(t *testing.T) {
	t.Parallel()

	body := "hello world"
	op := Operation{
		OpType:       OpReplaceRange,
		Start:        intPtr(6),
		End:          intPtr(11),
		Text:         "there",
		OriginalText: "world",
	}

	r, ok := Resolve(body, op, 0, nil)
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if r.Start != 6 || r.End != 11 || r.Confidence != 1.0 {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestResolveExactOffsetsFallsThroughWhenMismatched(t *testing.T) {
	t.Parallel()

	body := "hello world, hello again"
	op := Operation{
		OpType:       OpReplaceRange,
		Start:        intPtr(0),
		End:          intPtr(5),
		Text:         "hi",
		OriginalText: "hello again",
	}

	r, ok := Resolve(body, op, 0, nil)
	if !ok {
		t.Fatal("expected original-text search to find the real occurrence")
	}
	if r.Start != 13 {
		t.Fatalf("expected offset 13, got %d", r.Start)
	}
}

func TestResolveAnchorMatch(t *testing.T) {
	t.Parallel()

	body := "# Title\nSome intro.\n## Section\nBody text.\n"
	op := Operation{
		OpType:     OpInsertAfterHeading,
		AnchorText: "## Section",
		Text:       "New paragraph.",
	}

	r, ok := Resolve(body, op, 0, nil)
	if !ok {
		t.Fatal("expected anchor match to succeed")
	}
	if r.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9 for unique anchor, got %v", r.Confidence)
	}
}

func TestResolveOriginalTextSearchOccurrenceIndex(t *testing.T) {
	t.Parallel()

	body := "cat dog cat bird cat"
	op := Operation{
		OpType:          OpReplaceRange,
		OriginalText:    "cat",
		OccurrenceIndex: 1,
		Text:            "CAT",
	}

	r, ok := Resolve(body, op, 0, nil)
	if !ok {
		t.Fatal("expected match")
	}
	if r.Start != 8 {
		t.Fatalf("expected second occurrence at offset 8, got %d", r.Start)
	}
}

func TestResolveWhitespaceNormalisedSearch(t *testing.T) {
	t.Parallel()

	body := "line one\n\n   line   two   continues"
	op := Operation{
		OpType:       OpReplaceRange,
		OriginalText: "line two continues",
		Text:         "replacement",
	}

	r, ok := Resolve(body, op, 0, nil)
	if !ok {
		t.Fatal("expected whitespace-normalised match")
	}
	if body[r.Start:r.End] != "line   two   continues" {
		t.Fatalf("unexpected matched span: %q", body[r.Start:r.End])
	}
}

func TestResolveEmptyFileFallback(t *testing.T) {
	t.Parallel()

	body := "---\ntitle: doc\n---\n   \n"
	fmEnd, _ := FrontmatterEnd(body)

	op := Operation{OpType: OpInsertAfter, Text: "content"}
	r, ok := Resolve(body, op, fmEnd, nil)
	if !ok {
		t.Fatal("expected empty-file fallback to succeed")
	}
	if r.Start != fmEnd || r.End != fmEnd {
		t.Fatalf("expected start=end=%d, got %+v", fmEnd, r)
	}
}

func TestResolveCursorFallback(t *testing.T) {
	t.Parallel()

	body := "---\ntitle: doc\n---\nSome unrelated content."
	fmEnd, _ := FrontmatterEnd(body)
	cursor := fmEnd + 5

	op := Operation{OpType: OpInsertAfter, OriginalText: "does not exist anywhere", Text: "x"}
	r, ok := Resolve(body, op, fmEnd, &cursor)
	if !ok {
		t.Fatal("expected cursor fallback to succeed")
	}
	if r.Confidence != 0.3 || r.Start != cursor {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestResolveUnresolvableOperationIsDropped(t *testing.T) {
	t.Parallel()

	body := "some normal document body"
	op := Operation{OpType: OpReplaceRange, OriginalText: "nonexistent phrase", Text: "x"}

	_, ok := Resolve(body, op, 0, nil)
	if ok {
		t.Fatal("expected no strategy to succeed")
	}
}

func TestResolveBatchDropsUnresolvableAndKeepsRest(t *testing.T) {
	t.Parallel()

	body := "alpha beta gamma"
	ops := []Operation{
		{OpType: OpReplaceRange, OriginalText: "beta", Text: "BETA"},
		{OpType: OpReplaceRange, OriginalText: "nonexistent", Text: "x"},
	}

	resolved := ResolveBatch(body, ops, 0, nil)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved operation, got %d", len(resolved))
	}
}

func TestFrontmatterClamping(t *testing.T) {
	t.Parallel()

	body := "---\ntitle: doc\n---\nBody starts here."
	fmEnd, fm := FrontmatterEnd(body)
	if fm["title"] != "doc" {
		t.Fatalf("expected parsed title, got %v", fm)
	}

	zero := 0
	op := Operation{
		OpType: OpReplaceRange,
		Start:  &zero,
		End:    &zero,
		Text:   "x",
	}

	r, ok := Resolve(body, op, fmEnd, nil)
	if !ok {
		t.Fatal("expected resolution via empty-file or cursor-independent path")
	}
	if r.Start < fmEnd {
		t.Fatalf("expected clamp to fmEnd=%d, got start=%d", fmEnd, r.Start)
	}
}

func TestApplyDescendingOffsetOrder(t *testing.T) {
	t.Parallel()

	body := "one two three"
	resolved := []Resolved{
		{Start: 0, End: 3, Text: "ONE"},
		{Start: 4, End: 7, Text: "TWO"},
		{Start: 8, End: 13, Text: "THREE"},
	}

	got := Apply(body, resolved)
	if got != "ONE TWO THREE" {
		t.Fatalf("unexpected result: %q", got)
	}
}
