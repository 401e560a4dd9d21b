package config

import (
	"fmt"
	"regexp"
	"strings"
)

// SensitivePattern is a shape of text that usually carries a credential.
type SensitivePattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
}

var sensitivePatterns = []SensitivePattern{
	{
		Name:        "GitHub Token",
		Pattern:     regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{36,}|github_pat_[A-Za-z0-9_]{22,})`),
		Description: "GitHub token",
	},
	{
		Name:        "GitLab Token",
		Pattern:     regexp.MustCompile(`\bglpat-[A-Za-z0-9_-]{20,}`),
		Description: "GitLab personal access token",
	},
	{
		Name:        "URL Credentials",
		Pattern:     regexp.MustCompile(`https?://[^/\s:@"']+:[^/\s@"']+@`),
		Description: "username and password embedded in a URL",
	},
	{
		Name:        "Assigned Secret",
		Pattern:     regexp.MustCompile(`(?i)\b(token|api[_-]?key|secret|password)\s*=\s*["'][^"']{8,}["']`),
		Description: "hardcoded secret value",
	},
}

// SensitiveDataFinding is one suspected credential in a manifest.
type SensitiveDataFinding struct {
	PatternName string
	Description string
	Line        int
	Preview     string // the line with the match redacted
}

// DetectSensitiveData scans manifest source for credentials. A line matching
// several patterns is reported once per pattern.
func DetectSensitiveData(content string) []SensitiveDataFinding {
	var findings []SensitiveDataFinding
	for i, line := range strings.Split(content, "\n") {
		for _, p := range sensitivePatterns {
			if !p.Pattern.MatchString(line) {
				continue
			}
			findings = append(findings, SensitiveDataFinding{
				PatternName: p.Name,
				Description: p.Description,
				Line:        i + 1,
				Preview:     redact(p.Pattern, line),
			})
		}
	}
	return findings
}

func redact(re *regexp.Regexp, line string) string {
	preview := strings.TrimSpace(re.ReplaceAllString(line, "[REDACTED]"))
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return preview
}

// FormatSensitiveDataWarning renders findings for the terminal, or "" when
// there are none.
func FormatSensitiveDataWarning(findings []SensitiveDataFinding) string {
	if len(findings) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Warning: the manifest may contain credentials\n")
	for _, f := range findings {
		fmt.Fprintf(&sb, "  line %d: %s\n    %s\n", f.Line, f.Description, f.Preview)
	}
	sb.WriteString("Keep tokens in IR_TOKEN or IR_GITLAB_TOKEN instead of sharing them in a manifest.\n")
	return sb.String()
}
