// Package markup converts the agent's lightweight markdown into Telegram
// HTML. It lexes the input into a sequence of styled spans instead of running
// ordered regex substitutions, so overlapping delimiters (bold ** vs italic *)
// cannot corrupt each other. Anything that does not form a complete span
// passes through literally.
package markup

import "strings"

type Kind int

const (
	Text Kind = iota
	Bold
	Italic
	Underline
	Strike
	Code
	CodeBlock
	Link
)

type Span struct {
	Kind Kind
	Text string
	URL  string
}

// ToTelegramHTML converts markdown-like text to Telegram HTML markup.
func ToTelegramHTML(s string) string {
	return Render(Lex(s))
}

// Lex splits the input into styled spans. Styling is flat: span contents are
// treated as plain text, matching the best-effort contract of the converter.
func Lex(input string) []Span {
	var spans []Span
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			spans = append(spans, Span{Kind: Text, Text: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(input) {
		rest := input[i:]

		var (
			span     Span
			consumed int
			ok       bool
		)
		switch {
		case strings.HasPrefix(rest, "```"):
			span, consumed, ok = lexCodeBlock(rest)
		case strings.HasPrefix(rest, "`"):
			span, consumed, ok = lexDelimited(rest, "`", Code)
		case strings.HasPrefix(rest, "**"):
			span, consumed, ok = lexDelimited(rest, "**", Bold)
		case strings.HasPrefix(rest, "__"):
			span, consumed, ok = lexDelimited(rest, "__", Underline)
		case strings.HasPrefix(rest, "~~"):
			span, consumed, ok = lexDelimited(rest, "~~", Strike)
		case strings.HasPrefix(rest, "*"):
			span, consumed, ok = lexDelimited(rest, "*", Italic)
		case strings.HasPrefix(rest, "_"):
			span, consumed, ok = lexUnderscoreItalic(input, i)
		case strings.HasPrefix(rest, "["):
			span, consumed, ok = lexLink(rest)
		}

		if ok {
			flush()
			spans = append(spans, span)
			i += consumed
			continue
		}
		literal.WriteByte(input[i])
		i++
	}
	flush()
	return spans
}

// lexDelimited matches delim<content>delim with non-empty content.
func lexDelimited(rest, delim string, kind Kind) (Span, int, bool) {
	body := rest[len(delim):]
	end := strings.Index(body, delim)
	if end <= 0 {
		return Span{}, 0, false
	}
	return Span{Kind: kind, Text: body[:end]}, len(delim)*2 + end, true
}

// lexCodeBlock matches ```lang?\n<content>``` where the language tag is
// stripped only when followed by a newline.
func lexCodeBlock(rest string) (Span, int, bool) {
	body := rest[3:]
	end := strings.Index(body, "```")
	if end <= 0 {
		return Span{}, 0, false
	}
	content := body[:end]
	if nl := strings.IndexByte(content, '\n'); nl >= 0 && isWord(content[:nl]) {
		content = content[nl+1:]
	} else {
		content = strings.TrimPrefix(content, "\n")
	}
	if content == "" {
		return Span{}, 0, false
	}
	return Span{Kind: CodeBlock, Text: content}, 6 + end, true
}

// lexUnderscoreItalic matches _content_ only at word boundaries: the opener
// must not follow a letter and the closer must not precede one, so that
// identifiers like snake_case_names stay untouched.
func lexUnderscoreItalic(input string, i int) (Span, int, bool) {
	if i > 0 && isLetter(input[i-1]) {
		return Span{}, 0, false
	}
	body := input[i+1:]
	end := strings.IndexByte(body, '_')
	if end <= 0 {
		return Span{}, 0, false
	}
	after := i + 1 + end + 1
	if after < len(input) && isLetter(input[after]) {
		return Span{}, 0, false
	}
	return Span{Kind: Italic, Text: body[:end]}, end + 2, true
}

// lexLink matches [text](url) with non-empty text and url.
func lexLink(rest string) (Span, int, bool) {
	closeText := strings.IndexByte(rest, ']')
	if closeText <= 1 {
		return Span{}, 0, false
	}
	if closeText+1 >= len(rest) || rest[closeText+1] != '(' {
		return Span{}, 0, false
	}
	closeURL := strings.IndexByte(rest[closeText+2:], ')')
	if closeURL <= 0 {
		return Span{}, 0, false
	}
	return Span{
		Kind: Link,
		Text: rest[1:closeText],
		URL:  rest[closeText+2 : closeText+2+closeURL],
	}, closeText + 2 + closeURL + 1, true
}

// Render serializes spans as Telegram HTML, escaping text content.
func Render(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case Bold:
			b.WriteString("<b>" + escape(s.Text) + "</b>")
		case Italic:
			b.WriteString("<i>" + escape(s.Text) + "</i>")
		case Underline:
			b.WriteString("<u>" + escape(s.Text) + "</u>")
		case Strike:
			b.WriteString("<s>" + escape(s.Text) + "</s>")
		case Code:
			b.WriteString("<code>" + escape(s.Text) + "</code>")
		case CodeBlock:
			b.WriteString("<pre>" + escape(s.Text) + "</pre>")
		case Link:
			b.WriteString(`<a href="` + escapeAttr(s.URL) + `">` + escape(s.Text) + "</a>")
		default:
			b.WriteString(escape(s.Text))
		}
	}
	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(escape(s), `"`, "&quot;")
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && !(c >= '0' && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}
