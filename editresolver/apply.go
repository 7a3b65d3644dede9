package editresolver

import (
	"sort"

	"github.com/quillforge/core/log"
)

// ResolveBatch resolves every operation in ops against body, dropping any
// operation that no strategy can place (logging a warning, per spec §4.3)
// while still resolving the rest of the batch.
func ResolveBatch(body string, ops []Operation, fmEnd int, cursorOffset *int) []Resolved {
	logger := log.GetDefaultLogger()

	resolved := make([]Resolved, 0, len(ops))
	for i, op := range ops {
		r, ok := Resolve(body, op, fmEnd, cursorOffset)
		if !ok {
			logger.Warn("editresolver: dropped unresolvable operation %d (op_type=%s)", i, op.OpType)
			continue
		}
		resolved = append(resolved, r)
	}
	return resolved
}

// Apply applies resolved operations to body, sequentially, sorted by Start
// descending so that applying an earlier (higher-offset) edit never
// invalidates the offsets of edits still pending.
func Apply(body string, resolved []Resolved) string {
	ordered := make([]Resolved, len(resolved))
	copy(ordered, resolved)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	for _, r := range ordered {
		body = body[:r.Start] + r.Text + body[r.End:]
	}
	return body
}
