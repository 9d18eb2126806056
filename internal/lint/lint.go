// Package lint implements the single-record heuristic linter.
//
// It is independent of the ledger checker: it looks at one file at a time,
// re-checks the two rules that need no other records (outcome link presence
// and self-supersession), then scans keys for PII-like names and string
// values for action/signal language.
package lint

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule names a lint check.
type Rule string

const (
	RuleOutcomeLink    Rule = "outcome-link"
	RuleSelfSupersedes Rule = "self-supersession"
	RulePIIKey         Rule = "pii-key"
	RuleActionLanguage Rule = "action-language"
)

// piiKeyHints are object keys (case-insensitive) that suggest personal data.
var piiKeyHints = map[string]bool{
	"name": true, "first_name": true, "last_name": true, "email": true,
	"phone": true, "address": true, "ssn": true, "dob": true,
	"birthdate": true, "student_id": true, "medical": true, "diagnosis": true,
}

// actionPatterns match trading/action language in lower-cased text.
var actionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(buy|sell|long|short|entry|exit|stop[- ]loss|take[- ]profit)\b`),
	regexp.MustCompile(`\b(signal|alpha|edge|front[- ]run|arbitrage)\b`),
	regexp.MustCompile(`\b(today|now|immediately|urgent|right away)\b`),
}

// Finding is the first lint violation in a record.
type Finding struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (f *Finding) Error() string {
	return f.Message
}

// Check lints one record document. It returns a nil Finding when the record
// passes and an error when data is not a JSON object.
func Check(data []byte) (*Finding, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing record: not a JSON object")
	}

	if f := checkOutcomeLink(doc); f != nil {
		return f, nil
	}
	if f := checkSelfSupersession(doc); f != nil {
		return f, nil
	}

	keys, texts := collect(doc)
	for _, key := range keys {
		if piiKeyHints[strings.ToLower(key)] {
			return &Finding{Rule: RulePIIKey, Message: fmt.Sprintf("PII-like key detected in CDM: %s", key)}, nil
		}
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, pat := range actionPatterns {
			if pat.MatchString(lower) {
				return &Finding{
					Rule:    RuleActionLanguage,
					Message: fmt.Sprintf("action/signal language detected: %s", pat.String()),
				}, nil
			}
		}
	}
	return nil, nil
}

func checkOutcomeLink(doc map[string]any) *Finding {
	if doc["record_type"] != "outcome" {
		return nil
	}
	links, _ := doc["links"].(map[string]any)
	if id, _ := links["decision_record_id"].(string); id != "" {
		return nil
	}
	return &Finding{Rule: RuleOutcomeLink, Message: "outcome record missing links.decision_record_id"}
}

func checkSelfSupersession(doc map[string]any) *Finding {
	id, _ := doc["record_id"].(string)
	if id == "" {
		return nil
	}
	supers, _ := doc["supersedes_record_ids"].([]any)
	for _, s := range supers {
		if s == id {
			return &Finding{Rule: RuleSelfSupersedes, Message: "record supersedes itself (circular)"}
		}
	}
	return nil
}

// collect walks v depth-first, returning every object key and every string
// value in document order. Object keys are visited sorted.
func collect(v any) (keys, texts []string) {
	var walk func(any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			names := make([]string, 0, len(val))
			for k := range val {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				keys = append(keys, k)
				walk(val[k])
			}
		case []any:
			for _, elem := range val {
				walk(elem)
			}
		case string:
			texts = append(texts, val)
		}
	}
	walk(v)
	return keys, texts
}
