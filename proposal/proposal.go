// Package proposal implements the Proposal Registry (spec §2 row J, §3's
// EditProposal, invariant I6): an in-memory "apply once, then expire"
// registry of agent-proposed document edits. An already-applied proposal
// reapplied is a no-op reporting AppliedCount 0 and Idempotent true rather
// than erroring, and a
// background sweep (one more pipeline.Job) expires proposals that sat
// unapplied for 24h.
package proposal

import (
	"time"

	"github.com/quillforge/core/editresolver"
)

// EditType is the kind of change an EditProposal carries.
type EditType string

const (
	EditTypeOperations EditType = "operations"
	EditTypeContent    EditType = "content"
)

// ContentEditMode is how a whole-content edit applies to the document body.
type ContentEditMode string

const (
	ContentModeAppend   ContentEditMode = "append"
	ContentModeReplace  ContentEditMode = "replace"
	ContentModeInsertAt ContentEditMode = "insert_at"
)

// ContentEdit is EditProposal's whole-content alternative to a list of
// EditorOperations.
type ContentEdit struct {
	Mode          ContentEditMode
	Content       string
	InsertPosition *int
}

// EditProposal is one agent-proposed edit awaiting review and apply, per
// spec §3's EditProposal type.
type EditProposal struct {
	ProposalID      string
	DocumentID      string
	EditType        EditType
	Operations      []editresolver.Operation
	ContentEdit     *ContentEdit
	AgentName       string
	Summary         string
	RequiresPreview bool
	UserID          string
	CreatedAt       time.Time
	Applied         bool
	AppliedAt       *time.Time
}

// AppliedResult is apply_edit_proposal's return value.
type AppliedResult struct {
	AppliedCount int
	DocumentID   string
	Idempotent   bool
}
