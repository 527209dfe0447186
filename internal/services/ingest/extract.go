package ingest

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// markdownToText flattens markdown to plain text using the goldmark AST.
// Returns the extracted text and the first level-1 heading as the title
// (empty when the document has none).
func markdownToText(source []byte) (text string, title string) {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var builder strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.Kind() {
			case ast.KindParagraph, ast.KindHeading, ast.KindListItem, ast.KindBlockquote:
				builder.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && title == "" {
				title = strings.TrimSpace(string(headingText(node, source)))
			}
		case *ast.Text:
			builder.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteByte(' ')
			}
		case *ast.AutoLink:
			builder.Write(node.URL(source))
		}
		return ast.WalkContinue, nil
	})

	return normalizeText(builder.String()), title
}

func headingText(heading *ast.Heading, source []byte) []byte {
	var builder strings.Builder
	for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			builder.Write(textNode.Segment.Value(source))
		}
	}
	return []byte(builder.String())
}

// htmlToText converts an HTML guideline page to plain text by way of
// markdown, so headings and lists keep their paragraph structure.
// The page <title> is returned when present.
func htmlToText(source []byte) (string, string, error) {
	html := string(source)

	converted, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return "", "", fmt.Errorf("html conversion failed: %w", err)
	}

	text, mdTitle := markdownToText([]byte(converted))

	title := mdTitle
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
			title = t
		}
	}

	return text, title, nil
}

// normalizeText collapses runs of blank lines and trims the result so
// chunk boundaries are not dominated by formatting noise.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
