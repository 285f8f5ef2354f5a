// Package extract turns raw status documents into plain text for the model.
package extract

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Format is the declared source format of an uploaded document.
type Format string

const (
	FormatHTML    Format = "html"
	FormatText    Format = "txt"
	FormatMD      Format = "md"
	FormatUnknown Format = "unknown"
)

// FormatOf maps a filename extension to a Format. ".htm" counts as HTML.
func FormatOf(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return FormatHTML
	case ".txt":
		return FormatText
	case ".md":
		return FormatMD
	default:
		return FormatUnknown
	}
}

// Text extracts plain text from content according to its declared format.
// txt/md pass through unchanged. HTML gets its markup stripped; unknown
// formats are treated as HTML first since most legacy exports are. Extraction
// never fails: any parse problem falls back to the raw content.
func Text(content string, format Format) string {
	switch format {
	case FormatText, FormatMD:
		return content
	default:
		return htmlText(content)
	}
}

// htmlText parses markup, drops script/style subtrees, and joins the
// remaining text with single spaces.
func htmlText(content string) string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(parts, " ")
}
