package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// GetText collects the raw text content beneath a node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanFragment normalizes a text fragment: edges trimmed, internal
// whitespace runs collapsed to one space, leftover non-printable runes
// dropped.
func CleanFragment(s string) string {
	s = strings.Trim(s, " \t\n")
	s = innerWhitespace.ReplaceAllString(s, " ")
	return removeNonPrintable(s)
}

// VisibleText renders the visible text of a document as normalized,
// newline-joined blocks. Script and style contents are excluded.
func VisibleText(doc *goquery.Document) string {
	var blocks []string
	for _, root := range doc.Nodes {
		visibleTextRecursive(root, &blocks)
	}
	return strings.Join(blocks, "\n")
}

func visibleTextRecursive(node *html.Node, blocks *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style", "head", "noscript":
			return
		}
	}
	if node.Type == html.TextNode {
		text := CleanFragment(node.Data)
		if text != "" {
			*blocks = append(*blocks, text)
		}
		return
	}
	child := node.FirstChild
	for child != nil {
		visibleTextRecursive(child, blocks)
		child = child.NextSibling
	}
}

// Fragments returns the cleaned text of every element matching the
// selector, in document order, dropping empty results.
func Fragments(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := CleanFragment(sel.Text())
		if text != "" {
			out = append(out, text)
		}
	})
	return out
}
