package ai

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

var droppedElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"form":     true,
	"input":    true,
	"button":   true,
	"link":     true,
	"meta":     true,
	"noscript": true,
}

// SanitizeHTML parses generated markup and re-renders it without document
// wrappers, active content, event handlers or inline styles.
func SanitizeHTML(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", eris.New("html content is empty")
	}

	doc, err := html.Parse(strings.NewReader(trimmed))
	if err != nil {
		return "", eris.Wrap(err, "parsing html content")
	}

	root := &html.Node{Type: html.ElementNode, Data: "div"}
	appendSanitizedChildren(root, doc)

	if root.FirstChild == nil {
		return "", eris.New("html content empty after cleaning")
	}

	var builder strings.Builder
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&builder, child); err != nil {
			return "", eris.Wrap(err, "rendering cleaned html")
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func appendSanitizedChildren(dst, src *html.Node) {
	if src == nil {
		return
	}

	skipWhitespace := src.Type == html.DocumentNode || (src.Type == html.ElementNode && (strings.EqualFold(src.Data, "html") || strings.EqualFold(src.Data, "body")))

	for child := src.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if skipWhitespace && strings.TrimSpace(child.Data) == "" {
				continue
			}
			dst.AppendChild(&html.Node{Type: html.TextNode, Data: child.Data})
		case html.ElementNode:
			name := strings.ToLower(child.Data)
			if droppedElements[name] {
				continue
			}
			if name == "html" || name == "body" {
				appendSanitizedChildren(dst, child)
				continue
			}

			replacement := &html.Node{Type: html.ElementNode, Data: name, Attr: safeAttributes(child.Attr)}
			appendSanitizedChildren(replacement, child)
			dst.AppendChild(replacement)
		case html.CommentNode, html.DoctypeNode:
			continue
		default:
			appendSanitizedChildren(dst, child)
		}
	}
}

func safeAttributes(attrs []html.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}

	kept := make([]html.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") || key == "style" || key == "srcdoc" {
			continue
		}
		if (key == "href" || key == "src") && unsafeURL(attr.Val) {
			continue
		}
		kept = append(kept, html.Attribute{Key: key, Val: attr.Val})
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func unsafeURL(value string) bool {
	v := strings.ToLower(strings.Join(strings.Fields(value), ""))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") || strings.HasPrefix(v, "data:text/html")
}
