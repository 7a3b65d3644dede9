package agentnode

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/quillforge/core/editresolver"
)

// fencedCodeBlock strips a ```json ... ``` or bare ``` ... ``` wrapper an
// LLM commonly wraps structured output in.
var fencedCodeBlock = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// trailingComma matches a comma immediately before a closing ] or }.
var trailingComma = regexp.MustCompile(`,(\s*[\]}])`)

// rawOperation mirrors editresolver.Operation's wire shape for JSON
// decoding; editresolver.Operation itself carries no JSON tags because
// the core never decodes it directly (agentnode is the one boundary that
// does, per spec §4.6's "produce ... a structured edit plan (JSON)").
type rawOperation struct {
	OpType          string  `json:"op_type"`
	Start           *int    `json:"start"`
	End             *int    `json:"end"`
	Text            string  `json:"text"`
	OriginalText    string  `json:"original_text"`
	AnchorText      string  `json:"anchor_text"`
	OccurrenceIndex int     `json:"occurrence_index"`
	Confidence      float64 `json:"confidence"`
}

type rawPlan struct {
	Operations []rawOperation `json:"operations"`
}

// repairAndParsePlan implements spec §4.6's "LLM JSON-parse errors trigger
// a single repair attempt (regex-strip code fences, fix trailing commas,
// re-parse); a second failure yields an empty operations list". ok is
// false only after both the direct parse and the repaired parse fail;
// warning is non-empty whenever a repair pass was needed at all, even one
// that ultimately succeeded.
func repairAndParsePlan(raw string) (ops []editresolver.Operation, warning string, ok bool) {
	if parsed, err := decodePlan(raw); err == nil {
		return parsed, "", true
	}

	repaired := stripCodeFence(raw)
	repaired = trailingComma.ReplaceAllString(repaired, "$1")

	if parsed, err := decodePlan(repaired); err == nil {
		return parsed, "agentnode: repaired malformed edit plan JSON (code fence / trailing comma)", true
	}

	return nil, "agentnode: edit plan JSON unparseable after repair attempt, degraded to no operations", false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fencedCodeBlock.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func decodePlan(raw string) ([]editresolver.Operation, error) {
	var p rawPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}

	ops := make([]editresolver.Operation, 0, len(p.Operations))
	for _, r := range p.Operations {
		ops = append(ops, editresolver.Operation{
			OpType:          editresolver.OpType(r.OpType),
			Start:           r.Start,
			End:             r.End,
			Text:            r.Text,
			OriginalText:    r.OriginalText,
			AnchorText:      r.AnchorText,
			OccurrenceIndex: r.OccurrenceIndex,
			Confidence:      r.Confidence,
		})
	}
	return ops, nil
}
