package jira

import "strings"

// adfDoc is the Atlassian Document Format subset used for descriptions:
// paragraphs of plain text, bullet lines as their own paragraphs
type adfDoc struct {
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Content []adfNode `json:"content"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

func paragraphs(s string) adfDoc {
	doc := adfDoc{Type: "doc", Version: 1, Content: []adfNode{}}
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimRight(line, " "); line == "" {
			continue
		}
		doc.Content = append(doc.Content, adfNode{
			Type:    "paragraph",
			Content: []adfNode{{Type: "text", Text: line}},
		})
	}
	return doc
}
