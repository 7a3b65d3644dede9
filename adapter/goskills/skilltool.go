package goskills

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/smallnest/goskills"
	"github.com/tmc/langchaingo/tools"
)

// SkillTool adapts one GoSkills-style operation (shell/python execution,
// file I/O, web search, or a named custom script) into a langchaingo
// tools.Tool, so agentnode generators can call it like any other tool.
type SkillTool struct {
	name        string
	description string
	skillPath   string
	scriptMap   map[string]string
}

var _ tools.Tool = (*SkillTool)(nil)

// NewSkillTool builds a SkillTool bound to name, rooted at skillPath for
// relative file operations.
func NewSkillTool(name, description, skillPath string, scriptMap map[string]string) *SkillTool {
	return &SkillTool{name: name, description: description, skillPath: skillPath, scriptMap: scriptMap}
}

func (t *SkillTool) Name() string { return t.name }

func (t *SkillTool) Description() string { return t.description }

// Call dispatches to the operation named by t.name, decoding input as the
// JSON shape that operation expects.
func (t *SkillTool) Call(ctx context.Context, input string) (string, error) {
	switch t.name {
	case "run_shell_code":
		return t.runShellCode(ctx, input)
	case "run_python_code":
		return t.runPythonCode(ctx, input)
	case "read_file":
		return t.readFile(input)
	case "write_file":
		return t.writeFile(input)
	case "duckduckgo_search":
		return t.duckduckgoSearch(ctx, input)
	default:
		if scriptPath, ok := t.scriptMap[t.name]; ok {
			return t.runScript(ctx, scriptPath, input)
		}
		return "", fmt.Errorf("unknown tool: %s", t.name)
	}
}

type codeParams struct {
	Code string         `json:"code"`
	Args map[string]any `json:"args"`
}

func (t *SkillTool) runShellCode(ctx context.Context, input string) (string, error) {
	var p codeParams
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		return "", fmt.Errorf("failed to unmarshal input: %w", err)
	}
	return execScript(ctx, "bash", []string{"-c", p.Code}, p.Args)
}

func (t *SkillTool) runPythonCode(ctx context.Context, input string) (string, error) {
	var p codeParams
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		return "", fmt.Errorf("failed to unmarshal input: %w", err)
	}
	python := "python3"
	if _, err := exec.LookPath(python); err != nil {
		python = "python"
	}
	return execScript(ctx, python, []string{"-c", p.Code}, p.Args)
}

func execScript(ctx context.Context, name string, args []string, envArgs map[string]any) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	for k, v := range envArgs {
		cmd.Env = append(cmd.Env, fmt.Sprintf("ARG_%s=%v", k, v))
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("execute %s: %w", name, err)
	}
	return out.String(), nil
}

type filePathParams struct {
	FilePath string `json:"filePath"`
}

func (t *SkillTool) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || t.skillPath == "" {
		return path
	}
	return filepath.Join(t.skillPath, path)
}

func (t *SkillTool) readFile(input string) (string, error) {
	var p filePathParams
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		return "", fmt.Errorf("failed to unmarshal input: %w", err)
	}
	if p.FilePath == "" {
		return "", fmt.Errorf("filePath is required")
	}

	content, err := os.ReadFile(t.resolvePath(p.FilePath))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(content), nil
}

type writeFileParams struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

func (t *SkillTool) writeFile(input string) (string, error) {
	var p writeFileParams
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		return "", fmt.Errorf("failed to unmarshal input: %w", err)
	}
	if p.FilePath == "" {
		return "", fmt.Errorf("filePath is required")
	}

	path := t.resolvePath(p.FilePath)
	if err := os.WriteFile(path, []byte(p.Content), 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return fmt.Sprintf("Successfully wrote to file %s", path), nil
}

type searchParams struct {
	Query string `json:"query"`
}

// duckduckgoSearch scrapes DuckDuckGo's HTML-only results page (no API key
// needed) with PuerkitoBio/goquery, the same HTML-parsing library
// pipeline's feed enrichment crawl uses.
func (t *SkillTool) duckduckgoSearch(ctx context.Context, input string) (string, error) {
	var p searchParams
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		return "", fmt.Errorf("failed to unmarshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://html.duckduckgo.com/html/?q="+p.Query, nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", "quillforge-core-goskills/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse search results: %w", err)
	}

	var sb strings.Builder
	doc.Find(".result__title").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		if title != "" {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, title))
		}
	})
	return sb.String(), nil
}

type customScriptParams struct {
	Args []string `json:"args"`
}

func (t *SkillTool) runScript(ctx context.Context, scriptPath, input string) (string, error) {
	var p customScriptParams
	if input != "" {
		if err := json.Unmarshal([]byte(input), &p); err != nil {
			return "", fmt.Errorf("failed to unmarshal input: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, scriptPath, p.Args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("execute script %s: %w", scriptPath, err)
	}
	return out.String(), nil
}

// SkillsToTools returns one SkillTool per built-in operation
// (run_shell_code, run_python_code, read_file, write_file,
// duckduckgo_search), each rooted at pkg's path. Custom scripts under
// pkg's path are not discovered; a script tool is built with NewSkillTool
// and an explicit scriptMap.
func SkillsToTools(pkg goskills.SkillPackage) ([]tools.Tool, error) {
	base := []string{"run_shell_code", "run_python_code", "read_file", "write_file", "duckduckgo_search"}
	out := make([]tools.Tool, 0, len(base))
	for _, name := range base {
		out = append(out, &SkillTool{
			name:        name,
			description: fmt.Sprintf("%s (skill package %s)", name, pkg.GetName()),
			skillPath:   pkg.GetPath(),
		})
	}
	return out, nil
}
