package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/postcraft-api/internal/config"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/redact"
)

// Document is the readable text obtained from a source.
type Document struct {
	// URL is the fetched address, empty for literal text.
	URL   string
	Title string
	Body  string
	// IsPlaceholder is true when Body is a failure message rather than
	// content obtained from the source.
	IsPlaceholder bool
}

// Source fetches a URL and returns its readable text. Implementations never
// fail outright: unreachable or unusable sources yield a placeholder Document.
type Source interface {
	Fetch(ctx context.Context, rawURL string) Document
}

// Fetcher retrieves web pages over HTTP and reduces them to text.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	maxTextChars int
	logger       *slog.Logger
}

// Ensure Fetcher implements Source
var _ Source = (*Fetcher)(nil)

// NewFetcher creates a Fetcher from the content configuration.
func NewFetcher(cfg config.ContentConfig, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
			Transport: publicTransport(time.Duration(cfg.FetchTimeoutSeconds) * time.Second),
		},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		maxTextChars: cfg.MaxTextChars,
		logger:       log.With(slog.String("component", "content_fetcher")),
	}
}

// Client returns the HTTP client used for outbound requests.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch downloads rawURL and extracts its text. Any failure is reported as a
// placeholder Document whose Body explains what went wrong.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Document {
	log := logger.FromContextOrDefault(ctx, f.logger).With(slog.String("url", rawURL))

	doc, err := f.fetch(ctx, rawURL)
	if err != nil {
		log.WarnContext(ctx, "content fetch failed, using placeholder",
			slog.String("error", redact.Error(err)))
		return placeholder(rawURL, err)
	}

	log.DebugContext(ctx, "content fetched",
		slog.Int("text_length", len(doc.Body)),
		slog.Bool("has_title", doc.Title != ""))
	return doc
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrAddressNotAllowed) {
			return Document{}, fmt.Errorf("%w: %v", ErrAddressNotAllowed, err)
		}
		return Document{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var title, text string
	switch mediaType(resp.Header.Get("Content-Type")) {
	case "text/html", "application/xhtml+xml", "":
		title, text, err = ExtractHTML(bytes.NewReader(body))
		if err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrNoText, err)
		}
	case "text/plain", "text/markdown":
		text = collapseWhitespace(string(body))
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, resp.Header.Get("Content-Type"))
	}

	text = truncate(text, f.maxTextChars)
	if text == "" {
		return Document{}, ErrNoText
	}

	return Document{URL: rawURL, Title: title, Body: text}, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

func placeholder(rawURL string, err error) Document {
	return Document{
		URL:           rawURL,
		Body:          fmt.Sprintf("Unable to fetch content from %s (%s). Summarize based on the URL alone.", rawURL, reason(err)),
		IsPlaceholder: true,
	}
}

// reason gives a short, client-safe description of a fetch failure.
func reason(err error) string {
	switch {
	case err == nil:
		return "unknown error"
	case errors.Is(err, ErrInvalidURL):
		return "invalid URL"
	case errors.Is(err, ErrUnexpectedStatus):
		return "the server returned an error"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported content type"
	case errors.Is(err, ErrNoText):
		return "no readable text"
	case errors.Is(err, ErrAddressNotAllowed):
		return "address not allowed"
	default:
		return "source unreachable"
	}
}
