package docs

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/docmerge/internal/frontmatter"
	"git.home.luguber.info/inful/docmerge/internal/markdown"
)

var adrHeadingPattern = regexp.MustCompile(`(?mi)^##\s+(status|date)\s*$`)

// InferMetadata derives document metadata from content.
//
// Precedence: YAML frontmatter supplies date/author/tags/status; an ADR-style
// `## Status` or `## Date` heading later in the body overrides the
// corresponding frontmatter value. The title comes from the first level-1
// heading, falling back to the filename. Unparsable values are simply left
// empty; metadata is never required.
func InferMetadata(content []byte, filename string) Metadata {
	meta := Metadata{}

	raw, body, had := frontmatter.Split(content)
	if had {
		fields := frontmatter.ParseYAML(raw)
		meta.Date = stringField(fields["date"])
		meta.Author = stringField(fields["author"])
		meta.Status = stringField(fields["status"])
		meta.Tags = tagsField(fields["tags"])
	}

	if h, ok := markdown.FirstH1(body); ok {
		meta.Title = h.Text
	} else {
		meta.Title = strings.TrimSuffix(filename, ".md")
	}

	// ADR-style headings win over frontmatter when both are present.
	if status := adrHeadingValue(body, "status"); status != "" {
		meta.Status = status
	}
	if date := adrHeadingValue(body, "date"); date != "" {
		meta.Date = date
	}

	return meta
}

// adrHeadingValue returns the first non-empty line following an ADR-style
// `## Status` / `## Date` heading, or "" when the heading is absent.
func adrHeadingValue(body []byte, name string) string {
	matches := adrHeadingPattern.FindAllSubmatchIndex(body, -1)
	for _, m := range matches {
		heading := strings.ToLower(string(body[m[2]:m[3]]))
		if heading != name {
			continue
		}
		rest := string(body[m[1]:])
		for _, line := range strings.Split(rest, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				return "" // Next heading reached without a value
			}
			return trimmed
		}
	}
	return ""
}

func stringField(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case time.Time:
		return value.Format("2006-01-02")
	case int, int64, float64:
		return fmt.Sprintf("%v", value)
	default:
		return ""
	}
}

func tagsField(v any) []string {
	switch value := v.(type) {
	case []any:
		tags := make([]string, 0, len(value))
		for _, item := range value {
			if s := stringField(item); s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		parts := strings.Split(value, ",")
		tags := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		return tags
	default:
		return nil
	}
}
