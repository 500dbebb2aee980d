// Package llmjson pulls a JSON object out of free-form model output.
package llmjson

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
)

// ErrNoObject is returned when the text contains no {...} span.
var ErrNoObject = eris.New("llmjson: no JSON object in response")

// Extract strips markdown fences and returns the span from the first '{' to
// the last '}'.
func Extract(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", ErrNoObject
	}
	return text[start : end+1], nil
}

// Decode extracts the first JSON object from text into a map. Malformed JSON
// gets one repair attempt before the call fails.
func Decode(text string) (map[string]any, error) {
	raw, err := Extract(text)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return nil, eris.Wrap(repairErr, "llmjson: repair")
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return nil, eris.Wrap(err, "llmjson: unmarshal repaired object")
	}
	return out, nil
}
