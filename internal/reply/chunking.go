package reply

import "strings"

// MaxMessageLength is the Bot API limit for one text message, in bytes
// of UTF-8 as counted by this package.
const MaxMessageLength = 4096

// SplitText breaks text into chunks of at most maxLen bytes, cutting at
// line boundaries. Fenced code blocks are kept whole when they fit within
// twice maxLen. A maxLen <= 0 disables splitting.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	inCodeBlock := false

	for _, line := range strings.Split(text, "\n") {
		lineWithNewline := line + "\n"

		// The flag flips after the overflow check so the closing fence
		// still counts as inside the block.
		isFence := strings.HasPrefix(strings.TrimSpace(line), "```")
		wasInCodeBlock := inCodeBlock
		if isFence {
			inCodeBlock = !inCodeBlock
		}

		if current.Len()+len(lineWithNewline) > maxLen {
			stillInBlock := wasInCodeBlock || (isFence && !inCodeBlock)
			if stillInBlock && current.Len() < maxLen*2 {
				current.WriteString(lineWithNewline)
				continue
			}

			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}

			if len(lineWithNewline) > maxLen {
				chunks = append(chunks, forceSplit(line, maxLen)...)
				continue
			}
		}

		current.WriteString(lineWithNewline)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}
	return chunks
}

// forceSplit breaks a single long line into chunks of at most maxLen
// bytes without cutting a UTF-8 sequence.
func forceSplit(line string, maxLen int) []string {
	var parts []string
	for len(line) > maxLen {
		cut := maxLen
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLen
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return parts
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
