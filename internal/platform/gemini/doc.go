// Package gemini implements generation.ModelFactory on top of Google's Gemini
// API using the google.golang.org/genai client.
//
// A new client is built for every request from the caller's own API key, so
// no credential or client state is shared between users. Each Model performs
// exactly one GenerateContent call per Generate; retries belong to the
// generation package. Responses are requested as JSON with a single required
// string field, and SDK errors are translated into *generation.RemoteError so
// that the generation classifier can reason about HTTP and provider status
// codes.
package gemini
