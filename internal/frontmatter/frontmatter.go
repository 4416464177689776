// Package frontmatter splits, parses, and re-serializes the YAML metadata
// block that leads every content document.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a metadata block
// but never closed it.
var ErrMissingClosingDelimiter = errors.New("metadata block opened but closing delimiter is missing")

const delimiter = "---"

// Style captures the newline shape of a document so rewrites stay stable.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates the leading `---` delimited YAML block from the body.
//
// If the document does not begin with a delimiter, had is false and body is
// the full input. An opened but unclosed block returns
// ErrMissingClosingDelimiter.
func Split(content []byte) (meta []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]

	// Empty block: the closing delimiter immediately follows the opener.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}

	closing := []byte(nl + delimiter + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	meta = rest[:idx+len(nl)]
	body = rest[idx+len(closing):]
	return meta, body, true, style, nil
}

// Join reassembles a document from raw metadata and body, reversing Split.
func Join(meta []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	fence := []byte(delimiter + nl)
	out := make([]byte, 0, 2*len(fence)+len(meta)+len(body))
	out = append(out, fence...)
	out = append(out, meta...)
	out = append(out, fence...)
	out = append(out, body...)
	return out
}

// ParseYAML parses a raw metadata block (without delimiters) into a map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}

	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
