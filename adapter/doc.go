// Package adapter holds small conversions between an llms.Model and the
// shapes the rest of the core expects: OpenAIAdapter exposes a
// single-prompt/options/system-prompt call surface over any llms.Model,
// and the goskills subpackage exposes github.com/smallnest/goskills
// operations as langchaingo tools.Tool values.
package adapter
