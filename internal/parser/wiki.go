package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"doc-segmenter/internal/section"
)

// WikiParser handles wikitext-style documents where headings are fenced
// with equals signs ("== History ==", "=== Early years ===").
type WikiParser struct{}

// wikiHeading matches a heading line and captures the fence and inner title.
var wikiHeading = regexp.MustCompile(`^(={2,6})\s*(.+?)\s*=+\s*$`)

func (p *WikiParser) Parse(r io.Reader, filename string) (section.Document, error) {
	title := DocTitle(filename)
	root := &section.HeadingNode{Level: 0, Title: title}

	type stackEntry struct {
		node  *section.HeadingNode
		level int
	}
	stack := []stackEntry{{node: root, level: 0}}

	var body []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			top := stack[len(stack)-1].node
			if top.Body != "" {
				top.Body += "\n\n" + text
			} else {
				top.Body = text
			}
		}
		body = body[:0]
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		m := wikiHeading.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			body = append(body, line)
			continue
		}
		flush()

		// "==" is level 1 under the document root.
		level := len(m[1]) - 1
		// Title keeps its decoration; the flattener strips it when
		// matching the ignore policy.
		newNode := &section.HeadingNode{Level: level, Title: strings.TrimSpace(line)}

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, newNode)
		stack = append(stack, stackEntry{node: newNode, level: level})
	}
	if err := scanner.Err(); err != nil {
		return section.Document{}, err
	}
	flush()

	return section.Document{Title: title, Root: root}, nil
}
