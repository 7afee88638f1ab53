// Package llm talks to an OpenAI-compatible chat completion endpoint
// (OpenRouter by default) and uses it to translate target text before
// voice cloning.
//
// The client requests JSON-only responses and retries on HTTP 408, 429 and
// 5xx, network timeouts and empty completions, with exponential backoff
// that honours Retry-After. Context cancellation aborts retries.
//
// Translator prompts for {"translation": "..."} and decodes it with
// DecodeLLMJSON, which tolerates code fences and surrounding prose.
package llm
