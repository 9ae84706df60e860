package channels

import "strings"

// SplitMessage breaks text into chunks of at most max runes, preferring
// to break on a newline and then on a space near the limit so words and
// paragraphs survive splitting. max <= 0 means no limit.
func SplitMessage(text string, max int) []string {
	if max <= 0 || len([]rune(text)) <= max {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > max {
		cut := max
		window := string(runes[:max])
		if idx := strings.LastIndex(window, "\n"); idx > max/2 {
			cut = len([]rune(window[:idx]))
		} else if idx := strings.LastIndex(window, " "); idx > max/2 {
			cut = len([]rune(window[:idx]))
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), " \n"))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " \n"))
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
