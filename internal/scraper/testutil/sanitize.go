package testutil

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// SensitivePatterns contains regex patterns for sensitive keys.
var SensitivePatterns = []string{
	// Login form fields of the portal
	`(?i)reliususerid`,
	`(?i)passwdtxt`,
	`(?i)user_?id`,

	// Password fields
	`(?i)password`,
	`(?i)passwd`,
	`(?i)secret`,

	// Tokens and sessions
	`(?i)token`,
	`(?i)session`,
	`(?i)sess_`,
	`(?i)auth`,
	`(?i)bearer`,

	// ASP.NET form state can embed the user's identity
	`(?i)__viewstate`,
	`(?i)__eventvalidation`,

	// Account identifiers
	`(?i)ssn`,
	`(?i)account_?(no|num|number)`,
}

// SensitiveHeaders are headers that should be redacted.
var SensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-auth-token":        true,
	"x-api-key":           true,
	"x-access-token":      true,
	"x-session-id":        true,
	"x-csrf-token":        true,
	"x-xsrf-token":        true,
	"proxy-authorization": true,
}

var (
	keyPatterns        = compileAll(SensitivePatterns, `%s`)
	jsonStringPatterns = compileAll(SensitivePatterns, `("%s")\s*:\s*"[^"]*"`)
	jsonValuePatterns  = compileAll(SensitivePatterns, `("%s")\s*:\s*([^"\s,}\]][^",}\]]*)`)
)

// SanitizeHAR redacts sensitive data from a HAR log.
// Returns a new HARLog with sensitive data replaced by [REDACTED].
func SanitizeHAR(har *HARLog) *HARLog {
	sanitized := &HARLog{
		Entries: make([]HAREntry, len(har.Entries)),
	}

	for i, entry := range har.Entries {
		sanitized.Entries[i] = HAREntry{
			Request: HARRequest{
				Method:  entry.Request.Method,
				URL:     sanitizeURL(entry.Request.URL),
				Headers: sanitizeHeaders(entry.Request.Headers),
				Body:    sanitizeBody(entry.Request.Body),
			},
			Response: HARResponse{
				Status:  entry.Response.Status,
				Headers: sanitizeHeaders(entry.Response.Headers),
				Content: HARContent{
					MimeType: entry.Response.Content.MimeType,
					Text:     sanitizeBody(entry.Response.Content.Text),
					Encoding: entry.Response.Content.Encoding,
					Size:     entry.Response.Content.Size,
				},
			},
		}
	}

	return sanitized
}

func sanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	changed := false
	for key := range query {
		if isSensitiveKey(key) {
			query.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

func sanitizeHeaders(headers []HARHeader) []HARHeader {
	sanitized := make([]HARHeader, len(headers))

	for i, h := range headers {
		if SensitiveHeaders[strings.ToLower(h.Name)] || isSensitiveKey(h.Name) {
			sanitized[i] = HARHeader{Name: h.Name, Value: redacted}
			continue
		}
		sanitized[i] = h
	}

	return sanitized
}

func sanitizeBody(body string) string {
	if body == "" {
		return body
	}

	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return sanitizeJSONBody(body)
	}

	// Form-encoded bodies (key=value&key2=value2)
	if strings.Contains(body, "=") && !strings.ContainsAny(trimmed, "<>") {
		return sanitizeFormBody(body)
	}

	return body
}

func sanitizeFormBody(body string) string {
	values, err := url.ParseQuery(body)
	if err != nil {
		return body
	}

	for key := range values {
		if isSensitiveKey(key) {
			values.Set(key, redacted)
		}
	}

	return values.Encode()
}

func sanitizeJSONBody(body string) string {
	result := body
	for i := range jsonStringPatterns {
		result = jsonStringPatterns[i].ReplaceAllString(result, `$1: "`+redacted+`"`)
		result = jsonValuePatterns[i].ReplaceAllString(result, `$1: "`+redacted+`"`)
	}
	return result
}

func isSensitiveKey(key string) bool {
	for _, re := range keyPatterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

func compileAll(patterns []string, format string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(strings.Replace(format, "%s", p, 1))
	}
	return compiled
}
