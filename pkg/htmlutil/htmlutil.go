package htmlutil

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrMissingElement is returned when a selection that is expected to exist matches nothing.
var ErrMissingElement = errors.New("missing element")

// ErrMissingAttr is returned when an element exists but lacks a required attribute.
var ErrMissingAttr = errors.New("missing attribute")

// GetText concatenates every text node under `node`, without any trimming.
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

// FirstText returns the first direct text child of a node, the equivalent of reading
// `contents[0]` of an element whose content starts with text.
func FirstText(node *html.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			return child.Data, true
		}
	}
	return "", false
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// NormalizeText turns the text of a node into something that can be compared against,
// line breaks and runs of whitespace collapse into a single space.
func NormalizeText(text string) string {
	text = innerWhitespace.ReplaceAllString(text, " ")
	text = removeNonPrintable(text)
	return strings.Trim(text, " \t\n")
}

// RequireAttr reads an attribute off the first node of a selection.
func RequireAttr(sel *goquery.Selection, name string) (string, error) {
	if sel.Length() == 0 {
		return "", ErrMissingElement
	}
	value, exists := sel.First().Attr(name)
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrMissingAttr, name)
	}
	return value, nil
}
