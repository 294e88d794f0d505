// Package frontmatter separates YAML frontmatter from Markdown bodies.
//
// Metadata here is advisory: a document with broken or absent frontmatter is
// still a valid document, so parsing failures degrade to "no frontmatter"
// rather than surfacing as errors.
package frontmatter

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a frontmatter delimiter, or the closing
// delimiter is missing, had is false and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return []byte{}, content[start+len(closeLine):], true
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, content, false
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], true
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
// Unparsable YAML yields an empty map; frontmatter fields are never required.
func ParseYAML(frontmatter []byte) map[string]any {
	if len(frontmatter) == 0 {
		return map[string]any{}
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil || fields == nil {
		return map[string]any{}
	}
	return fields
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
