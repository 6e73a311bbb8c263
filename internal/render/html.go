package render

import (
	"fmt"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"
)

// HTMLToText converts WordPress rendered HTML to plain text with basic
// formatting, wrapped to width. A width of 0 disables wrapping.
func HTMLToText(raw string, width int) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre, inCode bool
	var skip int
	var anchorURL string
	var anchorStart int
	var listDepth int

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			text := strings.TrimLeft(sb.String(), "\n")
			return wrapText(strings.TrimRight(text, " \n"), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if tt == xhtml.StartTagToken {
					skip++
				}
			case "p", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "figure":
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
				if t.Data == "blockquote" {
					sb.WriteString("> ")
				}
			case "br":
				sb.WriteString("\n")
			case "ul", "ol":
				listDepth++
			case "li":
				sb.WriteString("\n")
				sb.WriteString(strings.Repeat("  ", max(listDepth-1, 0)))
				sb.WriteString("- ")
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = true
			case "pre":
				inPre = true
				sb.WriteString("\n")
			case "img":
				for _, attr := range t.Attr {
					if attr.Key == "alt" && attr.Val != "" {
						sb.WriteString("[image: " + attr.Val + "]")
					}
				}
			case "a":
				anchorURL = ""
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
				anchorStart = sb.Len()
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "ul", "ol":
				if listDepth > 0 {
					listDepth--
				}
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = false
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				if anchorURL != "" {
					text := strings.TrimSpace(sb.String()[anchorStart:])
					// Only append URL if it differs from the link text.
					if text != anchorURL {
						sb.WriteString(" [")
						sb.WriteString(anchorURL)
						sb.WriteString("]")
					}
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			if skip > 0 {
				continue
			}
			text := tokenizer.Token().Data
			if inPre {
				// Preserve whitespace in pre blocks, indent with 4 spaces.
				lines := strings.Split(text, "\n")
				for i, line := range lines {
					if i > 0 {
						sb.WriteString("\n")
					}
					if line != "" {
						sb.WriteString("    ")
						sb.WriteString(line)
					}
				}
			} else if inCode {
				sb.WriteString(text)
			} else {
				sb.WriteString(strings.ReplaceAll(text, "\n", " "))
			}
		}
	}
}

// Title turns a rendered title into a single line of plain text.
func Title(raw string) string {
	return strings.Join(strings.Fields(HTMLToText(raw, 0)), " ")
}

// TimeAgo formats t relative to now, e.g. "3 hours ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// wrapText performs simple word wrapping to the given width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.HasPrefix(paragraph, "    ") {
			// Don't wrap code blocks.
			result.WriteString(paragraph)
			result.WriteString("\n")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := len(word)
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}
