package util

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Heading returns the text content of the first heading (h1, h2, h3, h4),
// if any is found within the first 4000 bytes.
func Heading(input io.Reader) string {

	tokenizer := html.NewTokenizerFragment(input, "body")
	tokenizer.SetMaxBuf(4096) // roughly the maximum number of bytes tokenized

	var offset = 0
	var inHeading string
	var text strings.Builder

	for {

		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}

		tagNameBytes, _ := tokenizer.TagName()
		tagName := string(tagNameBytes)

		if tt == html.StartTagToken && inHeading == "" {
			if tagName == "h1" || tagName == "h2" || tagName == "h3" || tagName == "h4" {
				inHeading = tagName
				continue
			}
		}

		if tt == html.TextToken && inHeading != "" {
			text.Write(tokenizer.Text())
		}

		if tt == html.EndTagToken && tagName == inHeading {
			return strings.TrimSpace(text.String())
		}

		offset += len(tokenizer.Raw())
		if offset > 4000 {
			break
		}
	}

	return ""
}
