package model

import "strings"

// Credential is an opaque bearer token proving identity to the query endpoint.
// A Credential obtained from ParseCredential is never empty and never carries
// wrapping quote characters. Absence is expressed by the ok result of the
// functions that produce one, never by an empty Credential.
type Credential string

// ParseCredential normalizes a raw stored or received token: surrounding
// whitespace is trimmed and at most one leading and one trailing double quote
// are removed. Interior quotes are left untouched. Returns false when nothing
// remains.
func ParseCredential(raw string) (Credential, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return Credential(s), true
}

// String returns the raw token. Use Redacted when logging.
func (c Credential) String() string {
	return string(c)
}

// Redacted returns a log-safe description of the credential.
func (c Credential) Redacted() string {
	if len(c) <= 8 {
		return "[redacted]"
	}
	return string(c[:4]) + "..." + "[redacted]"
}
