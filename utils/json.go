package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// ErrNoJSON is returned when no JSON document can be recovered from the input.
var ErrNoJSON = errors.New("no JSON object found in text")

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ParseJSONSafe recovers a JSON document from model output. It tries, in
// order: the text as-is, the first fenced code block, the span from the first
// '{' to the last '}', and finally jsonrepair on that span.
func ParseJSONSafe(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoJSON
	}
	if gjson.Valid(text) {
		return text, nil
	}

	candidate := text
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidate = strings.TrimSpace(m[1])
		if gjson.Valid(candidate) {
			return candidate, nil
		}
	}

	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			span := candidate[start : end+1]
			if gjson.Valid(span) {
				return span, nil
			}
			candidate = span
		} else {
			candidate = candidate[start:]
		}
	} else {
		return "", ErrNoJSON
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return "", errors.Join(ErrNoJSON, err)
	}
	if !gjson.Valid(repaired) {
		return "", ErrNoJSON
	}
	return repaired, nil
}
