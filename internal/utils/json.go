// Package utils holds small helpers shared across packages.
package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// trailingCommaRegex fixes trailing commas before a closing brace/bracket,
// the most common syntax error in model output.
var trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

// ExtractAndParseJSON extracts a JSON value from an LLM response and
// unmarshals it into T. Markdown fences and trailing prose are ignored;
// trailing commas and truncated structures are repaired before giving up.
func ExtractAndParseJSON[T any](response string) (T, error) {
	var result T

	cleaned := stripFences(response)
	if cleaned == "" {
		return result, fmt.Errorf("no JSON found in response")
	}

	idx := strings.IndexAny(cleaned, "{[")
	if idx == -1 {
		// The model sometimes quotes the whole object as a JSON string.
		var asString string
		if err := json.Unmarshal([]byte(cleaned), &asString); err == nil {
			return ExtractAndParseJSON[T](asString)
		}
		return result, fmt.Errorf("no JSON start ({ or [) found")
	}

	// A Decoder reads one value and ignores trailing text, which covers
	// responses like: {"a":1} Hope this helps!
	jsonPart := cleaned[idx:]
	if err := json.NewDecoder(strings.NewReader(jsonPart)).Decode(&result); err != nil {
		repaired := repairJSON(jsonPart)
		if repaired != jsonPart {
			if err2 := json.NewDecoder(strings.NewReader(repaired)).Decode(&result); err2 == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("parse JSON: %w", err)
	}

	return result, nil
}

// repairJSON fixes trailing commas and balances structures truncated
// mid-output. Deliberately conservative: anything beyond that is returned
// to the caller as a parse error so the round can be retried.
func repairJSON(input string) string {
	result := trailingCommaRegex.ReplaceAllString(input, `$1`)
	return closeTruncated(result)
}

// closeTruncated closes an unterminated string and balances braces/brackets.
func closeTruncated(input string) string {
	quotes := 0
	escaped := false
	for _, c := range input {
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			quotes++
		}
	}
	if quotes%2 != 0 {
		input += `"`
	}

	openBrackets := strings.Count(input, "[") - strings.Count(input, "]")
	for i := 0; i < openBrackets; i++ {
		input += "]"
	}
	openBraces := strings.Count(input, "{") - strings.Count(input, "}")
	for i := 0; i < openBraces; i++ {
		input += "}"
	}
	return input
}

// stripFences removes a surrounding markdown code block, if any.
func stripFences(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
