package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var ErrNoJSONObject = errors.New("no JSON object in model response")

var objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractObject finds the outermost {...} span in raw and decodes it into out.
func ExtractObject(raw string, out interface{}) error {
	match := objectPattern.FindString(raw)
	if match == "" {
		return ErrNoJSONObject
	}
	if err := json.Unmarshal([]byte(match), out); err != nil {
		return fmt.Errorf("decode model JSON: %w", err)
	}
	return nil
}
