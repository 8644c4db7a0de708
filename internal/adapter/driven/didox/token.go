package didox

import "encoding/json"

// tokenRule is one strategy for locating the session token in a login
// response. Rules are tried in a fixed order; the first match wins.
type tokenRule interface {
	extract(raw json.RawMessage) (string, bool)
}

// objectField matches a JSON object carrying the token under a named
// string field.
type objectField string

func (f objectField) extract(raw json.RawMessage) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}

	v, ok := obj[string(f)]
	if !ok {
		return "", false
	}

	var token string
	if err := json.Unmarshal(v, &token); err != nil || token == "" {
		return "", false
	}
	return token, true
}

// rawString matches a response whose entire body is a bare JSON string.
type rawString struct{}

func (rawString) extract(raw json.RawMessage) (string, bool) {
	var token string
	if err := json.Unmarshal(raw, &token); err != nil || token == "" {
		return "", false
	}
	return token, true
}

// sessionTokenRules is the fixed extraction order. The field priority
// matches what the provider has been observed to return; it is not
// documented upstream, so keep the order stable for compatibility.
var sessionTokenRules = []tokenRule{
	objectField("token"),
	objectField("access_token"),
	objectField("accessToken"),
	objectField("auth_token"),
	rawString{},
}

// extractSessionToken resolves the session token from a login response
// by running the rules in order. Returns ("", false) when nothing matches.
func extractSessionToken(raw json.RawMessage) (string, bool) {
	for _, rule := range sessionTokenRules {
		if token, ok := rule.extract(raw); ok {
			return token, true
		}
	}
	return "", false
}
