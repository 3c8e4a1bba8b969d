// Package policy rewrites Vault service policies: rule blocks granting
// access under secret/ are stripped and replaced with a scoped read
// grant on the service's aws_dmz credential path.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl"
)

// IsServicePolicy reports whether a policy name follows the service
// naming convention: service/<name> or <name>-service.
func IsServicePolicy(name string) bool {
	return strings.HasPrefix(name, "service/") || strings.HasSuffix(name, "-service")
}

// ServiceName derives the service behind a policy name. The first
// matching rule wins: strip a leading "service/", else strip a trailing
// "-service", else the name is already the service.
func ServiceName(name string) string {
	if strings.HasPrefix(name, "service/") {
		return strings.TrimPrefix(name, "service/")
	}
	if strings.HasSuffix(name, "-service") {
		return strings.TrimSuffix(name, "-service")
	}
	return name
}

// CredsPath returns the credential path granted to a service.
func CredsPath(service string) string {
	return "aws_dmz/creds/" + service
}

var secretBlockStart = regexp.MustCompile(`^\s*path\s+"secret/`)

// StripSecretRules removes every rule block whose path pattern starts
// with secret/. Block boundaries are found by counting brace depth
// across every character of the suppressed lines, not by matching
// lines: a block body may contain nested braces, and a block opened and
// closed on a single line must end suppression on that same line.
// Lines outside suppressed blocks pass through unchanged.
func StripSecretRules(text string) string {
	var (
		out         []string
		suppressing bool
		opened      bool
		depth       int
	)

	for _, line := range strings.Split(text, "\n") {
		if !suppressing {
			if !secretBlockStart.MatchString(line) {
				out = append(out, line)
				continue
			}
			suppressing = true
			opened = false
			depth = 0
		}

		for _, r := range line {
			switch r {
			case '{':
				opened = true
				depth++
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			suppressing = false
		}
	}

	return strings.Join(out, "\n")
}

// HasCredsGrant reports whether text already references the credential
// path for service. The check is substring containment, so a mention
// inside a comment or an unrelated block also counts.
func HasCredsGrant(text, service string) bool {
	return strings.Contains(text, CredsPath(service))
}

// InjectCreds appends a rule block granting read on the service's
// credential path. Non-empty text gets a blank-line separator; empty
// text becomes just the new block.
func InjectCreds(text, service string) string {
	block := fmt.Sprintf("path %q {\n  capabilities = [\"read\"]\n}\n", CredsPath(service))
	if strings.TrimSpace(text) == "" {
		return block
	}
	return strings.TrimRight(text, "\n") + "\n\n" + block
}

// Rewrite produces the replacement text for a service policy. The
// injection is skipped when the original text already references the
// credential path, which keeps reruns idempotent. A result with no
// content at all is rejected: an empty policy denies everything, which
// is never what a rewrite should silently produce. The result must also
// still parse as HCL.
func Rewrite(name, text string) (string, error) {
	service := ServiceName(name)

	result := StripSecretRules(text)
	if !HasCredsGrant(text, service) {
		result = InjectCreds(result, service)
	}

	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("policy %q would become empty, refusing to update", name)
	}
	if _, err := hcl.Parse(result); err != nil {
		return "", fmt.Errorf("rewritten policy %q is not valid HCL: %w", name, err)
	}
	return result, nil
}
