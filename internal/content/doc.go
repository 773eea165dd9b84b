// Package content turns user-supplied input into text ready for summarization.
// Plain text is passed through; URLs are fetched and their HTML reduced to the
// readable parts of the page.
package content
