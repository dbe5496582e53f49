// Package redact masks credential-like values in source text before it is
// persisted or sent to a third-party service. It is a best-effort
// sanitation pass over a fixed vocabulary, not a security boundary.
package redact

import "regexp"

// Sentinel replaces redacted values.
const Sentinel = "[REDACTED]"

// secretPattern matches assignments like `password = "value"` for a fixed
// set of credential-like keys. The value match stops at the first closing
// quote so multiple secrets on one line are redacted independently.
var secretPattern = regexp.MustCompile(`(?i)(\b(?:password|secret|key|token|access_key|secret_key)\b\s*=\s*)"([^"]+)"`)

// Secrets replaces every quoted value assigned to a credential-like key
// with the sentinel, preserving the key and surrounding syntax. Text with
// no matching assignment is returned unchanged.
func Secrets(text string) string {
	return secretPattern.ReplaceAllString(text, `${1}"`+Sentinel+`"`)
}
