package generation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const excerptLength = 60

// newTerminalError builds the single error returned for a failed request.
// detail, when non-empty, replaces the default guidance for the class.
func newTerminalError(req Request, class Classification, detail string, attempts int, cause error) *TerminalError {
	if detail == "" {
		detail = guidance(class)
	}
	return &TerminalError{
		Classification: class,
		Operation:      req.Operation,
		Platform:       req.Platform,
		Message:        describe(req) + ": " + detail,
		Attempts:       attempts,
		Cause:          cause,
	}
}

// describe names what was being attempted, including the platform and an
// excerpt of the instruction or summary where they apply.
func describe(req Request) string {
	switch req.Operation {
	case OperationSummarize:
		return "Failed to summarize content"
	case OperationGenerate:
		return fmt.Sprintf("Failed to generate %s post from summary %q",
			req.Platform.DisplayName(), excerpt(req.Summary))
	case OperationTune:
		return fmt.Sprintf("Failed to tune %s post with instruction %q",
			req.Platform.DisplayName(), excerpt(req.Instruction))
	default:
		return "Failed to generate content"
	}
}

func guidance(class Classification) string {
	switch class {
	case InvalidCredential:
		return "the API key was rejected; check your API key configuration"
	case RateLimited:
		return "the model provider is limiting requests; check your quota and try again later"
	case ServiceUnavailable:
		return "the model service is temporarily unavailable; try again later"
	case InvalidInput:
		return "the request was rejected as invalid; check your input and configuration"
	default:
		return "something went wrong while generating content; try again"
	}
}

// excerpt shortens s to a single-line preview.
func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= excerptLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:excerptLength]) + "..."
}
