package editresolver

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontmatterEnd returns the byte offset immediately after a document's
// leading `---`-delimited frontmatter block, and the parsed frontmatter
// fields. If body has no frontmatter block, it returns (0, nil).
//
// The block's extent comes from a line scan: it closes at the first later
// line that is exactly "---" apart from trailing whitespace. A "---"
// inside a longer line, or an indented "---" line within a multi-line
// YAML block scalar, does not end the block. The fields are then decoded
// with yaml.v3.
func FrontmatterEnd(body string) (int, map[string]any) {
	if !strings.HasPrefix(body, "---") {
		return 0, nil
	}

	end, blockYAML, ok := splitFrontmatterBlock(body)
	if !ok {
		return 0, nil
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(blockYAML), &fm); err != nil {
		return end, nil
	}
	return end, fm
}

// splitFrontmatterBlock locates the closing "---" line of the first YAML
// document in body and returns the byte offset immediately after it, along
// with the YAML text in between (exclusive of both delimiter lines).
func splitFrontmatterBlock(body string) (end int, blockYAML string, ok bool) {
	lines := strings.SplitAfter(body, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, "", false
	}

	offset := len(lines[0])
	for i, line := range lines[1:] {
		if strings.TrimRight(line, " \t\r\n") == "---" {
			return offset + len(line), strings.Join(lines[1:i+1], ""), true
		}
		offset += len(line)
	}
	return 0, "", false
}
