package core

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags end a line of text when opened or closed.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"td": false, "hr": true, "section": true, "article": true, "header": true, "footer": true,
}

// HTMLToText renders an HTML email body as plain text, one block element per line.
// Script and style content is dropped. Entities are decoded by the tokenizer.
func HTMLToText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseLines(b.String())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" || tag == "head" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if newline, ok := blockTags[tag]; ok {
				if newline {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			b.Write(z.Text())
		}
	}
}

// collapseLines squeezes runs of whitespace within each line and drops empty lines.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
