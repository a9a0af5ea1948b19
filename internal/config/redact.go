package config

import (
	"net/url"
	"strings"
)

// secretParams are query parameters that carry credentials in libSQL URLs.
var secretParams = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table
	"authtoken": true,
	"jwt":       true,
}

// RedactURL replaces the password and any authToken/jwt query values in a
// connection URL with "***". Anything it cannot parse is returned unchanged.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}

	return redactQuery(redactPassword(raw))
}

func redactPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if u.User == nil {
		return raw
	}

	if _, hasPassword := u.User.Password(); !hasPassword {
		return raw
	}

	// Find the userinfo section between "://" and "@" in the raw string,
	// then replace the password portion (after "username:") with "***".
	schemeEnd := strings.Index(raw, "://")
	if schemeEnd < 0 {
		return raw
	}

	afterScheme := schemeEnd + len("://")

	atIdx := strings.Index(raw[afterScheme:], "@")
	if atIdx < 0 {
		return raw
	}

	userinfo := raw[afterScheme : afterScheme+atIdx]
	colonIdx := strings.Index(userinfo, ":")

	if colonIdx < 0 {
		return raw
	}

	return raw[:afterScheme] + userinfo[:colonIdx+1] + "***" + raw[afterScheme+atIdx:]
}

func redactQuery(raw string) string {
	q := strings.Index(raw, "?")
	if q < 0 {
		return raw
	}

	query, fragment, hasFragment := strings.Cut(raw[q+1:], "#")
	params := strings.Split(query, "&")

	for i, p := range params {
		key, _, ok := strings.Cut(p, "=")
		if ok && secretParams[strings.ToLower(key)] {
			params[i] = key + "=***"
		}
	}

	out := raw[:q+1] + strings.Join(params, "&")
	if hasFragment {
		out += "#" + fragment
	}

	return out
}

// RedactToken keeps the first four characters of a token for identification.
func RedactToken(token string) string {
	const keep = 4

	if token == "" {
		return ""
	}

	if len(token) <= keep {
		return "***"
	}

	return token[:keep] + "***"
}
