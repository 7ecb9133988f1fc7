package tenantconf

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity classifies a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding, tied to the 1-based line it was
// found on (line 0 for document-level findings).
type Issue struct {
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Line == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", i.Line, i.Severity, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	colorRe   = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	almostHdr = regexp.MustCompile(`^\[.*$`)
)

// knownKeys maps each recognized section to its keys and value checker.
var knownKeys = map[string]map[string]func(Value) string{
	"ui": {
		"theme": func(v Value) string {
			s, ok := v.(string)
			if !ok || (s != ThemeLight && s != ThemeDark) {
				return `theme must be "light" or "dark"`
			}
			return ""
		},
		"logo_path": func(v Value) string {
			s, ok := v.(string)
			if !ok || !strings.HasPrefix(s, "/") {
				return `logo_path must be a string starting with "/"`
			}
			return ""
		},
		"primary_color": func(v Value) string {
			s, ok := v.(string)
			if !ok || !colorRe.MatchString(s) {
				return `primary_color must be a "#RRGGBB" hex color`
			}
			return ""
		},
		"show_branding": requireBool("show_branding"),
	},
	"chat": {
		"has_history": requireBool("has_history"),
		"max_messages": func(v Value) string {
			n, ok := v.(int)
			if !ok || n <= 0 {
				return "max_messages must be a positive integer"
			}
			return ""
		},
		"default_agent":   requireString("default_agent"),
		"welcome_message": requireString("welcome_message"),
	},
	"features": {
		FeatureAgents:      requireBool(FeatureAgents),
		FeatureCollections: requireBool(FeatureCollections),
		FeatureTeams:       requireBool(FeatureTeams),
		FeatureAnalytics:   requireBool(FeatureAnalytics),
	},
	"limits": {
		LimitMaxUsers:       requireLimit(LimitMaxUsers),
		LimitMaxAgents:      requireLimit(LimitMaxAgents),
		LimitMaxCollections: requireLimit(LimitMaxCollections),
		LimitStorageMB:      requireLimit(LimitStorageMB),
	},
	"integrations": {
		"allowed_oauth": func(v Value) string {
			if _, ok := v.([]string); !ok {
				return `allowed_oauth must be an array like ["google"]`
			}
			return ""
		},
		"webhook_url": func(v Value) string {
			s, ok := v.(string)
			if !ok || (s != "" && !strings.HasPrefix(s, "http")) {
				return `webhook_url must be empty or start with "http"`
			}
			return ""
		},
	},
}

func requireBool(key string) func(Value) string {
	return func(v Value) string {
		if _, ok := v.(bool); !ok {
			return key + " must be true or false"
		}
		return ""
	}
}

func requireString(key string) func(Value) string {
	return func(v Value) string {
		if _, ok := v.(string); !ok {
			return key + " must be a string"
		}
		return ""
	}
}

func requireLimit(key string) func(Value) string {
	return func(v Value) string {
		n, ok := v.(int)
		if !ok {
			return key + " must be an integer"
		}
		if n < Unlimited {
			return fmt.Sprintf("%s must be -1 (unlimited), 0 (blocked), or positive, got %d", key, n)
		}
		return ""
	}
}

// ValidateDocument is the strict pre-flight counterpart of ParseLenient.
// It never skips silently: every line the lenient parser would drop, and
// every value outside its key's domain, produces a line-numbered Issue.
// An empty result means the document resolves without any fallback.
func ValidateDocument(text string) []Issue {
	var issues []Issue

	section := ""
	seen := make(map[string]int) // section/key -> first line

	for lineNo, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		n := lineNo + 1

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			section = m[1]
			if _, known := knownKeys[section]; !known {
				issues = append(issues, Issue{
					Line:     n,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("unknown section [%s] is ignored", section),
				})
			}
			continue
		}

		if almostHdr.MatchString(line) {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityError,
				Message:  fmt.Sprintf("malformed section header %q", line),
			})
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityError,
				Message:  fmt.Sprintf("cannot interpret %q as key = value", line),
			})
			continue
		}
		key := strings.TrimSpace(line[:eq])
		if key == "" {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityError,
				Message:  "missing key before \"=\"",
			})
			continue
		}

		if section == "" {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%q appears before any [section] header", key),
			})
			continue
		}

		qualified := section + "/" + key
		if first, dup := seen[qualified]; dup {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s overrides earlier value from line %d", key, first),
			})
		} else {
			seen[qualified] = n
		}

		checks, knownSection := knownKeys[section]
		if !knownSection {
			continue
		}
		check, knownKey := checks[key]
		if !knownKey {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("unknown key %q in [%s] is ignored", key, section),
			})
			continue
		}

		value := coerceValue(strings.TrimSpace(line[eq+1:]))
		if msg := check(value); msg != "" {
			issues = append(issues, Issue{
				Line:     n,
				Severity: SeverityError,
				Message:  msg,
			})
		}
	}

	// Absent sections resolve from defaults; surface that so administrators
	// are not surprised by values they never wrote.
	doc := ParseLenient(text)
	for _, name := range []string{"ui", "chat", "features", "limits", "integrations"} {
		if _, ok := doc[name]; !ok {
			issues = append(issues, Issue{
				Line:     0,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("section [%s] is absent; defaults apply", name),
			})
		}
	}

	return issues
}
