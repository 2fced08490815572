package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoStructuredPayload means the model output could not be read as an analysis object.
var ErrNoStructuredPayload = errors.New("no structured payload in model output")

const fence = "```"

// payload is the JSON shape the model is asked to return.
type payload struct {
	UserReply *string  `json:"user_reply"`
	Summary   *string  `json:"summary"`
	Actions   []string `json:"actions"`
}

func (p payload) empty() bool {
	return p.UserReply == nil && p.Summary == nil && p.Actions == nil
}

// analysis copies the fields verbatim. Absent fields stay zero so the caller
// can substitute its defaults.
func (p payload) analysis() Analysis {
	a := Analysis{Actions: p.Actions}
	if p.UserReply != nil {
		a.UserReply = *p.UserReply
	}
	if p.Summary != nil {
		a.Summary = *p.Summary
	}
	return a
}

// ExtractJSONObject isolates the JSON object inside free-form model text.
//
// Rules, in order:
//  1. trim surrounding whitespace; empty text has no payload
//  2. a leading ``` fence (with optional language tag) is dropped together
//     with a trailing ``` if there is one, so unterminated fences still parse
//  3. if what is left is not a bare object, take the span from the first '{'
//     to the last '}' (prose before or after the object)
func ExtractJSONObject(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", fmt.Errorf("%w: empty output", ErrNoStructuredPayload)
	}

	if strings.HasPrefix(s, fence) {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, fence)
			s = strings.TrimPrefix(strings.TrimSpace(s), "json")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSpace(strings.TrimSuffix(s, fence))
	}

	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		start := strings.IndexByte(s, '{')
		end := strings.LastIndexByte(s, '}')
		if start < 0 || end < start {
			return "", fmt.Errorf("%w: no JSON object found", ErrNoStructuredPayload)
		}
		s = s[start : end+1]
	}
	return s, nil
}

// ParseAnalysisText runs ExtractJSONObject and decodes the result.
func ParseAnalysisText(text string) (Analysis, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return Analysis{}, err
	}
	return decodeAnalysis([]byte(obj))
}

// decodeAnalysis decodes a JSON object. An object that carries none of the
// expected keys, or carries them with the wrong types, is not an analysis.
func decodeAnalysis(raw []byte) (Analysis, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrNoStructuredPayload, err)
	}
	if p.empty() {
		return Analysis{}, fmt.Errorf("%w: none of user_reply, summary, actions present", ErrNoStructuredPayload)
	}
	return p.analysis(), nil
}

// decodeStructured decodes an already-parsed form (function call arguments).
func decodeStructured(args map[string]any) (Analysis, error) {
	if len(args) == 0 {
		return Analysis{}, fmt.Errorf("%w: empty function arguments", ErrNoStructuredPayload)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrNoStructuredPayload, err)
	}
	return decodeAnalysis(raw)
}
