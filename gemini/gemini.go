// Package gemini implements [dockstream.Transport] directly against the
// Google Gemini API, bypassing the gateway.
//
// Operators use it to smoke-test a provider configuration with the same
// controller and UI that normally sit in front of the gateway. It wraps
// the google.golang.org/genai SDK, translating its iter.Seq2 streaming
// iterator into the pull-based [dockstream.Stream] interface. Cost is
// reported as zero; pricing lives in the gateway, not here.
package gemini

const (
	defaultModel     = "gemini-3.1-pro-preview"
	defaultMaxTokens = 8192
)
