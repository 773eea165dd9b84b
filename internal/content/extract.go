package content

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Template: true,
}

// blocks are the elements whose text is kept, one line each.
var blocks = map[atom.Atom]bool{
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.P:          true,
	atom.Li:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Figcaption: true,
	atom.Td:         true,
}

// ExtractHTML parses an HTML document and returns its title and readable
// text: the meta description followed by headings, paragraphs and list items,
// one per line. Pages without such elements fall back to all visible body
// text.
func ExtractHTML(r io.Reader) (title string, text string, err error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var (
		description string
		lines       []string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case skipped[n.DataAtom]:
				return
			case n.DataAtom == atom.Title:
				if title == "" {
					title = collapseWhitespace(nodeText(n))
				}
				return
			case n.DataAtom == atom.Meta:
				if description == "" && isDescription(n) {
					description = collapseWhitespace(attr(n, "content"))
				}
				return
			case blocks[n.DataAtom]:
				if line := collapseWhitespace(nodeText(n)); line != "" {
					lines = append(lines, line)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(lines) == 0 {
		if body := findBody(root); body != nil {
			if all := collapseWhitespace(nodeText(body)); all != "" {
				lines = append(lines, all)
			}
		}
	}

	if description != "" {
		lines = append([]string{description}, lines...)
	}

	return title, strings.Join(lines, "\n"), nil
}

// nodeText concatenates the text beneath n, skipping non-content elements.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blocks[n.DataAtom] {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return b.String()
}

func isDescription(n *html.Node) bool {
	name := strings.ToLower(attr(n, "name"))
	property := strings.ToLower(attr(n, "property"))
	return name == "description" || property == "og:description"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

// collapseWhitespace trims s and replaces every run of whitespace with a
// single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// truncate caps s at max runes, cutting at the last word boundary when one is
// close enough. max <= 0 disables the cap.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexAny(cut, " \n"); i > len(cut)*3/4 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
