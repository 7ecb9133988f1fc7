package tenantconf

import (
	"regexp"
	"strconv"
	"strings"
)

// Value is a parsed configuration value: string, bool, int, or []string.
type Value interface{}

// Section is a parsed configuration section
type Section map[string]Value

// Document is the result of parsing a raw configuration text: an ordered-
// insensitive mapping of section name to key/value pairs.
type Document map[string]Section

var sectionHeaderRe = regexp.MustCompile(`^\[([\w.]+)\]$`)

// ParseLenient parses a configuration document best-effort. It never fails:
// blank lines and # comments are ignored, lines that cannot be interpreted
// as a section header or a key = value assignment are silently skipped, and
// key/value lines outside any section are dropped. Duplicate keys within a
// section keep the last occurrence. Callers merge the result over complete
// defaults, so a partial or empty Document still yields a full Config.
func ParseLenient(text string) Document {
	doc := make(Document)
	var current Section

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			if doc[name] == nil {
				doc[name] = make(Section)
			}
			current = doc[name]
			continue
		}

		if current == nil {
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		if key == "" {
			continue
		}
		current[key] = coerceValue(strings.TrimSpace(line[eq+1:]))
	}

	return doc
}

// coerceValue converts a raw value string, checked in order: quoted string,
// boolean literal, integer, bracketed array, raw string.
func coerceValue(raw string) Value {
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		return raw[1 : len(raw)-1]
	}

	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	if isInteger(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}

	if len(raw) >= 2 && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return parseArray(raw[1 : len(raw)-1])
	}

	return raw
}

// isInteger reports whether s is all digits with an optional leading minus.
func isInteger(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseArray splits a bracketed array body on commas, trimming whitespace
// and surrounding quotes from each element.
func parseArray(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return []string{}
	}
	parts := strings.Split(body, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		out = append(out, p)
	}
	return out
}
