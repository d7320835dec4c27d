package identity

import (
	"encoding/json"
	"strings"
)

// parseDescriptor attempts to decode a legacy descriptor blob as a JSON
// object. A first pass parses the raw text; a second pass retries after
// trimming stray surrounding bracket characters, which some legacy writers
// doubled up. Returns ok=false when neither pass yields an object.
func parseDescriptor(raw string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
		return fields, true
	}

	stripped := strings.Trim(trimmed, "{}[]")
	if err := json.Unmarshal([]byte(stripped), &fields); err == nil {
		return fields, true
	}
	return nil, false
}

// refKeys are the descriptor fields that may carry a stable employee
// reference, in the order legacy writers used them.
var refKeys = []string{"employeeId", "employee_id", "userId"}

// embeddedRef extracts an employee reference from parsed descriptor fields.
func embeddedRef(fields map[string]any) (string, bool) {
	for _, k := range refKeys {
		if s := stringField(fields, k); s != "" {
			return s, true
		}
	}
	return "", false
}

// candidateName extracts the best display-name candidate from parsed
// descriptor fields. Field priority mirrors the shapes observed in the
// historical data: plain name fields first, then split first/last pairs,
// then a nested user object, then an email local part.
func candidateName(fields map[string]any) string {
	for _, k := range []string{"name", "username", "employeeName", "fullName", "displayName"} {
		if s := stringField(fields, k); s != "" {
			return s
		}
	}

	if first := stringField(fields, "firstName"); first != "" {
		return joinName(first, stringField(fields, "lastName"))
	}
	if first := stringField(fields, "first_name"); first != "" {
		return joinName(first, stringField(fields, "last_name"))
	}

	if nested, ok := fields["user"].(map[string]any); ok {
		if s := candidateName(nested); s != "" {
			return s
		}
	}

	if email := stringField(fields, "email"); email != "" {
		if i := strings.Index(email, "@"); i > 0 {
			return email[:i]
		}
		return email
	}
	return ""
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
