package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// mainContentSelector prefers the article body over navigation and chrome.
const mainContentSelector = "article, [role='main'], .main-content, #main-content, .post-content, .article-content, .entry-content"

var boilerplatePhrases = []string{
	"accept cookies",
	"cookie policy",
	"privacy policy",
	"terms of service",
	"all rights reserved",
	"subscribe to our newsletter",
	"sign up for our newsletter",
	"share this article",
	"follow us on",
	"advertisement",
	"sponsored content",
}

// ExtractHTML reduces an HTML page to readable paragraphs of plain text.
func ExtractHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	root := doc.Find(mainContentSelector)
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var paragraphs []string
	root.Find("p, h1, h2, h3, h4, h5, h6, li").Each(func(_ int, sel *goquery.Selection) {
		line := cleanLine(sel.Text())
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	})

	// Pages without paragraph markup fall back to the raw body text.
	if len(paragraphs) == 0 {
		for line := range strings.Lines(root.Text()) {
			if cleaned := cleanLine(line); cleaned != "" {
				paragraphs = append(paragraphs, cleaned)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// cleanLine collapses whitespace and drops boilerplate and navigation scraps.
func cleanLine(line string) string {
	line = strings.Join(strings.Fields(line), " ")
	if len(line) < 4 {
		return ""
	}

	lower := strings.ToLower(line)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return ""
		}
	}

	return line
}
