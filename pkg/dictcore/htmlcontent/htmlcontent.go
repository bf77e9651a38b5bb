// Package htmlcontent flattens the structured-content payloads a dictionary
// term bank attaches to a definition (dictionary term-bank entry format:
// "text" | "image" | "structured-content") into plain model.DefinitionEntry
// values. Structured content is a tree of {tag, content, data} nodes rather
// than literal HTML, so it is rendered to an HTML fragment first and then
// stripped: parse with golang.org/x/net/html and join the text nodes with
// single spaces.
package htmlcontent

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
)

// FlattenDefinitions converts a dictionary's raw definition list into opaque
// DefinitionEntry values. Each element of raw is either a bare string (a
// "text" definition) or a map decoded from one of:
//
//	{"type": "text", "text": "..."}
//	{"type": "image", "path": "..."}
//	{"type": "structured-content", "content": <content tree>}
func FlattenDefinitions(raw []any) []model.DefinitionEntry {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.DefinitionEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, flattenOne(r))
	}
	return out
}

func flattenOne(r any) model.DefinitionEntry {
	switch v := r.(type) {
	case string:
		return model.DefinitionEntry{Kind: "text", Text: v}
	case map[string]any:
		switch kind, _ := v["type"].(string); kind {
		case "image":
			path, _ := v["path"].(string)
			return model.DefinitionEntry{Kind: "image", URL: path}
		case "structured-content":
			return model.DefinitionEntry{Kind: "structured-content", Text: Flatten(v["content"])}
		default:
			return model.DefinitionEntry{Kind: "text", Text: Flatten(v)}
		}
	default:
		return model.DefinitionEntry{Kind: "text", Text: Flatten(v)}
	}
}

// Flatten renders a structured-content node (string | []any | map[string]any
// with "tag"/"content" keys, per the dictionary schema) down to plain text.
func Flatten(node any) string {
	var b strings.Builder
	renderNode(&b, node)
	return collapseWhitespace(extractText(b.String()))
}

// renderNode turns a content-tree node into an HTML fragment. Unknown node
// shapes (numbers, bools, nil) contribute nothing.
func renderNode(b *strings.Builder, node any) {
	switch v := node.(type) {
	case string:
		b.WriteString(html.EscapeString(v))
	case []any:
		for _, c := range v {
			renderNode(b, c)
		}
	case map[string]any:
		tag, _ := v["tag"].(string)
		if tag == "" {
			tag = "span"
		}
		b.WriteByte('<')
		b.WriteString(tag)
		b.WriteByte('>')
		renderNode(b, v["content"])
		b.WriteString("</")
		b.WriteString(tag)
		b.WriteByte('>')
	}
}

// extractText parses an HTML fragment and returns its text nodes, each
// followed by a space; Flatten then collapses runs of whitespace.
func extractText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
