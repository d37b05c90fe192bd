package content

import "github.com/russross/blackfriday/v2"

// RenderMarkdown converts article markdown to HTML. Output depends only on
// the input text.
func RenderMarkdown(src string) string {
	return string(blackfriday.Run([]byte(src)))
}
