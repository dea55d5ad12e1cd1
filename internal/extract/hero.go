package extract

import "strings"

// Frames slices an example document into four incremental hero frames:
// frontmatter only, then the heading, then the first paragraph, then
// the full document. A document without frontmatter yields one frame.
func Frames(example []byte) [][]byte {
	text := string(example)
	lines := strings.Split(text, "\n")

	fmStart, fmEnd := -1, -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			if fmStart < 0 {
				fmStart = i
			} else {
				fmEnd = i
				break
			}
		}
	}

	if fmEnd < 0 {
		return [][]byte{example}
	}

	frames := make([][]byte, 0, 4)
	head := lines[:fmEnd+1]

	// frame 0: frontmatter only
	frames = append(frames, joined(head, nil))

	body := lines[fmEnd+1:]
	titleEnd := 0
	firstParaEnd := 0
	foundContent := false
	for i, line := range body {
		if strings.TrimSpace(line) == "" {
			if foundContent && firstParaEnd == 0 {
				firstParaEnd = i
			}
			continue
		}
		foundContent = true
		if titleEnd == 0 {
			titleEnd = i + 1
		}
	}
	if firstParaEnd == 0 {
		firstParaEnd = len(body)
	}

	// frame 1: frontmatter + heading line
	cut1 := titleEnd
	if cut1 < 1 {
		cut1 = 1
	}
	if cut1 > len(body) {
		cut1 = len(body)
	}
	frames = append(frames, joined(head, body[:cut1]))

	// frame 2: frontmatter + heading + first paragraph
	cut2 := firstParaEnd + 2
	if cut2 > len(body) {
		cut2 = len(body)
	}
	frames = append(frames, joined(head, body[:cut2]))

	// frame 3: full document
	frames = append(frames, example)

	return frames
}

func joined(head, body []string) []byte {
	parts := make([]string, 0, len(head)+len(body))
	parts = append(parts, head...)
	parts = append(parts, body...)
	return []byte(strings.Join(parts, "\n") + "\n")
}
