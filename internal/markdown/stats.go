package markdown

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// wordsPerMinute approximates adult silent reading speed for technical prose.
const wordsPerMinute = 238

const defaultExcerptLength = 280

// ComputeStats derives word count, reading time, and the heading outline from
// a Markdown body. Fenced code blocks contribute to the word count (readers do
// spend time on them) but not to the heading outline.
func ComputeStats(body []byte) interfaces.DocumentStats {
	stats := interfaces.DocumentStats{}
	inFence := false

	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}

		if !inFence {
			if heading := headingText(trimmed); heading != "" {
				stats.Headings = append(stats.Headings, heading)
			}
		}

		stats.WordCount += len(strings.Fields(trimmed))
	}

	if stats.WordCount > 0 {
		minutes := float64(stats.WordCount) / wordsPerMinute
		stats.ReadingTime = time.Duration(minutes * float64(time.Minute)).Round(time.Second)
		if stats.ReadingTime < time.Second {
			stats.ReadingTime = time.Second
		}
	}

	return stats
}

// TitleFallback returns the first heading of the document, used when front
// matter omits a title.
func TitleFallback(stats interfaces.DocumentStats) string {
	if len(stats.Headings) == 0 {
		return ""
	}
	return stats.Headings[0]
}

// Excerpt extracts the first prose paragraph from a Markdown body, truncated
// on a rune boundary. Headings, code fences, and block quotes are skipped so
// the excerpt reads like a summary.
func Excerpt(body []byte, limit int) string {
	if limit <= 0 {
		limit = defaultExcerptLength
	}

	inFence := false
	var paragraph []string

	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if trimmed == "" {
			if len(paragraph) > 0 {
				break
			}
			continue
		}

		if headingText(trimmed) != "" || strings.HasPrefix(trimmed, ">") {
			continue
		}

		paragraph = append(paragraph, trimmed)
	}

	excerpt := strings.Join(paragraph, " ")
	if utf8.RuneCountInString(excerpt) <= limit {
		return excerpt
	}

	runes := []rune(excerpt)
	cut := limit
	for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}

func headingText(line string) string {
	if !strings.HasPrefix(line, "#") {
		return ""
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 6 || level == len(line) || line[level] != ' ' {
		return ""
	}
	return strings.TrimSpace(line[level:])
}
