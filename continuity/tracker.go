package continuity

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/quillforge/core/log"
)

// Extractor invokes the continuity-extraction LLM prompt for one chapter
// and returns its raw (possibly malformed) JSON response. Building that
// prompt from chapter_text/character_profiles/outline_body is left to the
// caller, matching spec.md's "per-agent LLM prompt content is data" stance.
type Extractor func(ctx context.Context, chapterText string, chapterNumber int, existing *ContinuityState) (rawJSON string, err error)

// Validator invokes the continuity-validation LLM prompt and returns its
// raw JSON response.
type Validator func(ctx context.Context, newContent string, chapterNumber int, state *ContinuityState) (rawJSON string, err error)

// Tracker is the Continuity Tracker of spec §4.7.
type Tracker struct {
	extract Extractor
	validate Validator
	store   Store
	logger  log.Logger
}

// New builds a Tracker backed by store, using extract/validate as the LLM
// seams.
func New(store Store, extract Extractor, validate Validator) *Tracker {
	return &Tracker{extract: extract, validate: validate, store: store, logger: log.GetDefaultLogger()}
}

// ExtractFromChapter implements spec §4.7's Extraction + Merge: it prompts
// the Extractor, repairs its JSON once on failure, normalises the result,
// and merges (and prunes) it into the tracked state for (userID,
// manuscriptFilename), persisting the result.
//
// On an unrepairable response the existing state is returned unchanged
// and a warning is logged, per spec.md's "a second failure preserves
// existing state and logs a warning".
func (t *Tracker) ExtractFromChapter(ctx context.Context, userID, manuscriptFilename, chapterText string, chapterNumber int) (*ContinuityState, error) {
	existing, err := t.store.Load(ctx, userID, manuscriptFilename)
	if err != nil {
		return nil, fmt.Errorf("continuity: load %s/%s: %w", userID, manuscriptFilename, err)
	}
	if existing == nil {
		existing = newEmptyState(userID, manuscriptFilename, chapterNumber)
	}

	raw, err := t.extract(ctx, chapterText, chapterNumber, existing)
	if err != nil {
		return nil, fmt.Errorf("continuity: extract chapter %d: %w", chapterNumber, err)
	}

	patch, ok := repairAndDecodePatch(raw)
	if !ok {
		t.logger.Warn("continuity: chapter %d extraction unparseable after repair, preserving existing state", chapterNumber)
		return existing, nil
	}

	patch = normalizeState(patch, chapterNumber)
	merged := merge(existing, patch, chapterNumber)
	merged.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if err := t.store.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("continuity: save %s/%s: %w", userID, manuscriptFilename, err)
	}
	return merged, nil
}

// ValidateContent implements spec §4.7's read-only Validation.
func (t *Tracker) ValidateContent(ctx context.Context, newContent string, chapterNumber int, state *ContinuityState) (ValidationResult, error) {
	raw, err := t.validate(ctx, newContent, chapterNumber, state)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("continuity: validate chapter %d: %w", chapterNumber, err)
	}

	result, ok := repairAndDecodeValidation(raw)
	if !ok {
		// Safe fallback mirrors the original's "assume valid if we can't parse".
		return ValidationResult{
			IsValid:    true,
			Warnings:   []string{"continuity: failed to fully validate continuity - proceeding with caution"},
			Confidence: 0.3,
		}, nil
	}
	return result, nil
}

var trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

func repairAndDecodePatch(raw string) (Patch, bool) {
	var wire patchWire
	if err := json.Unmarshal([]byte(raw), &wire); err == nil {
		return wire.toPatch(), true
	}
	fixed := trailingCommaPattern.ReplaceAllString(raw, "$1")
	if err := json.Unmarshal([]byte(fixed), &wire); err == nil {
		return wire.toPatch(), true
	}
	return Patch{}, false
}

func repairAndDecodeValidation(raw string) (ValidationResult, bool) {
	var wire validationWire
	if err := json.Unmarshal([]byte(raw), &wire); err == nil {
		return wire.toResult(), true
	}
	fixed := trailingCommaPattern.ReplaceAllString(raw, "$1")
	if err := json.Unmarshal([]byte(fixed), &wire); err == nil {
		return wire.toResult(), true
	}
	return ValidationResult{}, false
}
