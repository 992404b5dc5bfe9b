package metatags

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoHeadClose is returned by Inject when the document has no </head>.
var ErrNoHeadClose = errors.New("metatags: document has no </head> insertion point")

// managedSet is the class of tags a block replaces.
type managedSet struct {
	title bool
	meta  map[string]struct{}
	link  map[string]struct{}
}

func (b TagBlock) managed() managedSet {
	m := managedSet{
		meta: make(map[string]struct{}),
		link: make(map[string]struct{}),
	}
	for _, t := range b.Tags {
		switch t.Element {
		case ElementTitle:
			m.title = true
		case ElementLink:
			m.link[strings.ToLower(t.Key)] = struct{}{}
		default:
			m.meta[strings.ToLower(t.Key)] = struct{}{}
		}
	}
	return m
}

// matches reports whether the current start tag of z is managed. It must be
// called after TagName and before any other TagAttr call.
func (m managedSet) matches(name string, z *html.Tokenizer, hasAttr bool) bool {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		v := strings.ToLower(strings.TrimSpace(string(val)))
		switch {
		case name == "meta" && (string(key) == "property" || string(key) == "name"):
			if _, ok := m.meta[v]; ok {
				return true
			}
		case name == "link" && string(key) == "rel":
			for _, rel := range strings.Fields(v) {
				if _, ok := m.link[rel]; ok {
					return true
				}
			}
		}
	}
	return false
}

// Inject removes every <head> tag the block manages (matched by element and
// property, name or rel, regardless of attribute order, quoting or line
// breaks) and inserts the block immediately before the first </head>.
//
// Injecting the same block twice yields the same document as injecting it
// once. When the document has no </head>, Inject returns the input
// unchanged together with ErrNoHeadClose.
func Inject(doc string, block TagBlock) (string, error) {
	m := block.managed()
	rendered := block.String()

	z := html.NewTokenizer(strings.NewReader(doc))
	out := make([]byte, 0, len(doc)+len(rendered))
	offset := 0
	inTitle := false
	trimNext := false

	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())
		raw := doc[start:offset]

		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return doc, fmt.Errorf("metatags: tokenize: %w", err)
			}
			return doc, ErrNoHeadClose
		}

		if inTitle {
			if tt == html.EndTagToken {
				if name, _ := z.TagName(); string(name) == "title" {
					inTitle = false
					trimNext = true
				}
			}
			continue
		}

		switch tt {
		case html.TextToken:
			if trimNext {
				raw = trimLeadingBreak(raw)
			}
			out = append(out, raw...)

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch tag := string(name); tag {
			case "title":
				if m.title {
					out = trimTrailingBlanks(out)
					inTitle = tt == html.StartTagToken
					trimNext = !inTitle
					continue
				}
			case "meta", "link":
				if m.matches(tag, z, hasAttr) {
					out = trimTrailingBlanks(out)
					trimNext = true
					continue
				}
			}
			out = append(out, raw...)

		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "head" {
				// The block goes between the line break and the indentation
				// of </head>, so a later injection finds it unindented.
				trimmed := trimTrailingBlanks(out)
				indent := string(out[len(trimmed):])
				out = append(trimmed, rendered...)
				out = append(out, indent...)
				out = append(out, doc[start:]...)
				return string(out), nil
			}
			out = append(out, raw...)

		default:
			out = append(out, raw...)
		}
		trimNext = false
	}
}

// trimTrailingBlanks drops the indentation left in front of a removed tag.
func trimTrailingBlanks(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// trimLeadingBreak drops the line break that followed a removed tag.
func trimLeadingBreak(s string) string {
	t := strings.TrimLeft(s, " \t")
	switch {
	case strings.HasPrefix(t, "\r\n"):
		return t[2:]
	case strings.HasPrefix(t, "\n"):
		return t[1:]
	}
	return t
}
