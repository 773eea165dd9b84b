// Package generation implements the resilient call path used for every
// LLM-backed content operation: summarizing source content, generating a
// platform-specific post from a summary and tuning an existing post.
//
// Each call passes through the same pipeline. A credential guard rejects
// requests without an API key before any network activity. A prompt invoker
// performs exactly one remote call through a Model bound to the caller's
// credential. Failures are classified by Classify, and a small state machine
// decides whether to back off and retry. The outcome is normalized into either
// the generated text or a single *TerminalError.
//
// The package does not know about any concrete LLM provider. Providers plug in
// through the ModelFactory interface (see internal/platform/gemini).
package generation
