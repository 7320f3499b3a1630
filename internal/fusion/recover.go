package fusion

import (
	"encoding/json"
	"errors"
	"strings"
)

// RecoveryStage records which parse attempt produced the object.
type RecoveryStage string

const (
	StageStrict RecoveryStage = "strict"
	StageBraces RecoveryStage = "braces"
)

var errNoObject = errors.New("no JSON object found")

// ParseStrict parses the whole response as a single JSON object.
func ParseStrict(raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNoObject
	}
	return out, nil
}

// ExtractObject parses the span from the first '{' to the last '}', which
// recovers objects wrapped in prose or markdown fences.
func ExtractObject(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, errNoObject
	}
	return ParseStrict(raw[start : end+1])
}

// RecoverJSON runs ParseStrict, then ExtractObject.
func RecoverJSON(raw string) (map[string]any, RecoveryStage, error) {
	obj, err := ParseStrict(raw)
	if err == nil {
		return obj, StageStrict, nil
	}
	obj, err = ExtractObject(raw)
	if err == nil {
		return obj, StageBraces, nil
	}
	return nil, "", &MalformedResponseError{Snippet: snippet(raw), Err: err}
}
