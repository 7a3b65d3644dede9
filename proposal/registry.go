package proposal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillforge/core/corerr"
	"github.com/quillforge/core/editresolver"
	"github.com/quillforge/core/principal"
)

// DocumentAccessor is the narrow seam apply_edit_proposal needs onto the
// document store (spec §6's "Document repository: narrow interfaces
// only"). A store/sqlite-backed implementation is the reference one.
type DocumentAccessor interface {
	GetBody(ctx context.Context, documentID string) (body string, frontmatterEnd int, err error)
	SetBody(ctx context.Context, documentID, body string) error
}

type proposalEntry struct {
	mu       sync.Mutex
	proposal EditProposal
	result   AppliedResult
}

// Registry is the in-process Proposal Registry: one map entry per
// proposal_id, each independently guarded so concurrent apply/reapply calls
// on different proposals never contend (spec §5's "per-proposal compare-
// and-set on applied").
type Registry struct {
	docs DocumentAccessor

	mu      sync.RWMutex
	entries map[string]*proposalEntry
}

// New creates an empty Registry backed by docs for apply-time reads/writes.
func New(docs DocumentAccessor) *Registry {
	return &Registry{
		docs:    docs,
		entries: make(map[string]*proposalEntry),
	}
}

// Propose registers a new EditProposal, returning its proposal_id, per
// spec §3's propose_edit(principal, proposal) → {proposal_id}.
func (r *Registry) Propose(ctx context.Context, p principal.Principal, ep EditProposal) (string, error) {
	if ep.EditType == EditTypeOperations && len(ep.Operations) == 0 {
		return "", corerr.New(corerr.BadInput, "proposal has edit_type=operations but no operations", nil)
	}
	if ep.EditType == EditTypeContent && ep.ContentEdit == nil {
		return "", corerr.New(corerr.BadInput, "proposal has edit_type=content but no content_edit", nil)
	}

	ep.ProposalID = uuid.NewString()
	ep.UserID = p.UserID
	ep.CreatedAt = time.Now()
	ep.Applied = false
	ep.AppliedAt = nil

	r.mu.Lock()
	r.entries[ep.ProposalID] = &proposalEntry{proposal: ep}
	r.mu.Unlock()

	return ep.ProposalID, nil
}

func (r *Registry) lookup(proposalID string, p principal.Principal) (*proposalEntry, error) {
	r.mu.RLock()
	entry, ok := r.entries[proposalID]
	r.mu.RUnlock()

	if !ok {
		return nil, corerr.New(corerr.NotFound, "proposal "+proposalID, nil)
	}
	entry.mu.Lock()
	owner := entry.proposal.UserID
	entry.mu.Unlock()
	if !p.CanAccess(owner) {
		return nil, corerr.New(corerr.AccessDenied, "proposal "+proposalID, nil)
	}
	return entry, nil
}

// Apply applies proposalID's edit to its document, per spec §3's
// apply_edit_proposal(principal, proposal_id, selected_op_indices?) →
// {applied_count, document_id, idempotent}. Reapplying an already-applied
// proposal is a no-op that returns AppliedCount 0 and Idempotent true
// (invariant I6), never an error.
func (r *Registry) Apply(ctx context.Context, p principal.Principal, proposalID string, selectedOpIndices []int) (AppliedResult, error) {
	entry, err := r.lookup(proposalID, p)
	if err != nil {
		return AppliedResult{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.proposal.Applied {
		return AppliedResult{AppliedCount: 0, DocumentID: entry.proposal.DocumentID, Idempotent: true}, nil
	}

	body, fmEnd, err := r.docs.GetBody(ctx, entry.proposal.DocumentID)
	if err != nil {
		return AppliedResult{}, corerr.Wrap(corerr.Transient, err, "load document %s", entry.proposal.DocumentID)
	}

	var newBody string
	appliedCount := 0

	switch entry.proposal.EditType {
	case EditTypeOperations:
		ops := entry.proposal.Operations
		if len(selectedOpIndices) > 0 {
			ops = selectOps(ops, selectedOpIndices)
		}
		resolved := editresolver.ResolveBatch(body, ops, fmEnd, nil)
		newBody = editresolver.Apply(body, resolved)
		appliedCount = len(resolved)
	case EditTypeContent:
		newBody = applyContentEdit(body, entry.proposal.ContentEdit)
		appliedCount = 1
	default:
		return AppliedResult{}, corerr.New(corerr.BadInput, "unknown edit_type "+string(entry.proposal.EditType), nil)
	}

	if err := r.docs.SetBody(ctx, entry.proposal.DocumentID, newBody); err != nil {
		return AppliedResult{}, corerr.Wrap(corerr.Transient, err, "save document %s", entry.proposal.DocumentID)
	}

	now := time.Now()
	entry.proposal.Applied = true
	entry.proposal.AppliedAt = &now
	entry.result = AppliedResult{AppliedCount: appliedCount, DocumentID: entry.proposal.DocumentID, Idempotent: false}

	return entry.result, nil
}

func selectOps(ops []editresolver.Operation, indices []int) []editresolver.Operation {
	out := make([]editresolver.Operation, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(ops) {
			out = append(out, ops[i])
		}
	}
	return out
}

func applyContentEdit(body string, edit *ContentEdit) string {
	if edit == nil {
		return body
	}
	switch edit.Mode {
	case ContentModeAppend:
		return body + edit.Content
	case ContentModeReplace:
		return edit.Content
	case ContentModeInsertAt:
		pos := len(body)
		if edit.InsertPosition != nil {
			pos = *edit.InsertPosition
			if pos < 0 {
				pos = 0
			}
			if pos > len(body) {
				pos = len(body)
			}
		}
		return body[:pos] + edit.Content + body[pos:]
	default:
		return body
	}
}
