package handler

import (
	"fmt"
	"strings"
)

// pattern is a compiled path pattern. Syntax: literal segments, `:name`
// for a single named capture, and `*` (optionally `*name`) as a trailing
// wildcard capturing one or more segments as an ordered sequence.
type pattern struct {
	raw      string
	segments []segment
	wildcard string // capture name of the trailing wildcard, "" if none
}

type segment struct {
	literal string
	param   string // ":name" captures, "" for literals
}

// compilePattern parses a path pattern.
func compilePattern(path string) (*pattern, error) {
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("handler: path pattern must begin with '/': %q", path)
	}
	p := &pattern{raw: path}
	parts := splitPath(path)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			if len(part) == 1 {
				return nil, fmt.Errorf("handler: unnamed ':' segment in pattern %q", path)
			}
			p.segments = append(p.segments, segment{param: part[1:]})
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, fmt.Errorf("handler: wildcard must be the final segment in pattern %q", path)
			}
			name := part[1:]
			if name == "" {
				name = "*"
			}
			p.wildcard = name
		default:
			p.segments = append(p.segments, segment{literal: part})
		}
	}
	return p, nil
}

// match tests path against the pattern and returns the captures. The
// query string must already be stripped. Matching is pure: identical
// inputs always produce identical captures.
func (p *pattern) match(path string) (Params, bool) {
	parts := splitPath(path)

	if p.wildcard == "" {
		if len(parts) != len(p.segments) {
			return nil, false
		}
	} else if len(parts) < len(p.segments)+1 {
		// A wildcard consumes one or more segments.
		return nil, false
	}

	params := Params{}
	for i, seg := range p.segments {
		if seg.param != "" {
			// A repeated name accumulates its captures in path order.
			params[seg.param] = append(params[seg.param], parts[i])
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	if p.wildcard != "" {
		rest := parts[len(p.segments):]
		params[p.wildcard] = append([]string(nil), rest...)
	}
	return params, true
}

func (p *pattern) String() string { return p.raw }

// splitPath splits a slash-separated path into its non-empty segments.
func splitPath(path string) []string {
	var out []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
