// Package tool provides tools that satisfy tmc/langchaingo's tools.Tool
// interface (Name, Description, Call).
//
// # Available Tools
//
// The package declares one tool, BraveSearch, which queries the Brave Search
// web API:
//
//	import "github.com/quillforge/core/tool"
//
//	braveTool, err := tool.NewBraveSearch("your-brave-api-key",
//		tool.WithBraveCount(5),
//		tool.WithBraveCountry("US"),
//		tool.WithBraveLang("en"),
//	)
//	if err != nil {
//		return err
//	}
//
//	result, err := braveTool.Call(ctx, "latest developments in quantum computing")
//
// NewBraveSearch reads BRAVE_API_KEY when apiKey is empty and returns an
// error when neither is set. WithBraveCount clamps the count to 1-20; the
// defaults are 10 results, country "US" and language "en". Call sends its
// input as the query and returns a numbered list of title, URL and
// description entries, or "No results found".
//
// # Tool Implementation
//
// ## Creating Custom Tools
//
// Implement the Tool interface:
//
//	import (
//		"github.com/tmc/langchaingo/tools"
//	)
//
//	type CustomTool struct {
//		apiKey string
//	}
//
//	func (t *CustomTool) Name() string {
//		return "custom_api_call"
//	}
//
//	func (t *CustomTool) Description() string {
//		return "Makes a call to the custom API"
//	}
//
//	func (t *CustomTool) Call(ctx context.Context, input string) (string, error) {
//		// Parse input
//		var params struct {
//			Query string `json:"query"`
//		}
//		if err := json.Unmarshal([]byte(input), &params); err != nil {
//			return "", err
//		}
//
//		// Make API call
//		result, err := t.callAPI(params.Query)
//		if err != nil {
//			return "", err
//		}
//
//		// Return result
//		return json.Marshal(result)
//	}
//
// # Security Considerations
//
//   - Validate all tool inputs
//   - Use chroot/sandboxing for code execution
//   - Set timeouts for network operations
//   - Restrict file system access
//   - Sanitize shell commands
//   - Use API keys securely
//   - Monitor tool usage
//
// # Error Handling
//
// BraveSearch returns plain wrapped errors. A custom tool can return a
// structured error type of its own:
//
//	type ToolError struct {
//		Code    string `json:"code"`
//		Message string `json:"message"`
//		Details any    `json:"details,omitempty"`
//	}
//
//	result, err := tool.Call(ctx, input)
//	if err != nil {
//		var toolErr *ToolError
//		if errors.As(err, &toolErr) {
//			// Handle specific tool error
//			fmt.Printf("Tool error: %s - %s\n", toolErr.Code, toolErr.Message)
//		}
//	}
//
// # Best Practices
//
//  1. Choose appropriate tools for your use case
//  2. Provide clear tool descriptions
//  3. Validate inputs before processing
//  4. Handle errors gracefully
//  5. Use timeouts for long-running operations
//  6. Monitor tool usage and performance
//  7. Secure sensitive operations
//  8. Test tools with various inputs
//
// # Tool Composition
//
// Tools can be composed for complex workflows:
//
//	// Create a composite tool that uses multiple sub-tools
//	// (fileTool stands for any tools.Tool of your own)
//	type CompositeTool struct {
//		searchTool *tool.BraveSearch
//		fileTool   tools.Tool
//	}
//
//	func (t *CompositeTool) Call(ctx context.Context, input string) (string, error) {
//		// Search for information
//		searchResult, _ := t.searchTool.Call(ctx, input)
//
//		// Save results to file
//		saveResult, _ := t.fileTool.Call(ctx, map[string]any{
//			"action": "write",
//			"path":   "/tmp/search_results.txt",
//			"content": searchResult,
//		})
//
//		return saveResult, nil
//	}
package tool
