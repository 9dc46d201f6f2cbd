package policy

import (
	"encoding/json"
	"fmt"
)

// Policy Types
//
// This package provides the bucket policy engine: a set of pure, deterministic
// validators and an assembler that turns user selections into a well-formed
// policy document. All functions here are stateless and safe for concurrent
// use; callers own all I/O and presentation.
//
// The document types use StringOrStringSlice so that Action/Resource marshal
// to a bare string when they hold exactly one element and to an array
// otherwise. Both forms are equivalent on input.

// Constants for policy validation
const (
	// PolicyVersion2012_10_17 is the current policy language version
	PolicyVersion2012_10_17 = "2012-10-17"

	// PolicyVersion2008_10_17 is the deprecated policy language version,
	// still accepted by the structural validator with a warning
	PolicyVersion2008_10_17 = "2008-10-17"

	// S3ResourceArnPrefix is the fixed prefix of S3 resource ARNs
	S3ResourceArnPrefix = "arn:aws:s3:::"
)

// StringOrStringSlice represents a value that can be either a string or []string
type StringOrStringSlice struct {
	values []string
}

// UnmarshalJSON implements json.Unmarshaler for StringOrStringSlice
func (s *StringOrStringSlice) UnmarshalJSON(data []byte) error {
	// Try unmarshaling as string first
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.values = []string{str}
		return nil
	}

	// Try unmarshaling as []string
	var strs []string
	if err := json.Unmarshal(data, &strs); err == nil {
		s.values = strs
		return nil
	}

	return fmt.Errorf("value must be string or []string")
}

// MarshalJSON implements json.Marshaler for StringOrStringSlice
func (s StringOrStringSlice) MarshalJSON() ([]byte, error) {
	if len(s.values) == 1 {
		return json.Marshal(s.values[0])
	}
	return json.Marshal(s.values)
}

// Strings returns the slice of strings
func (s StringOrStringSlice) Strings() []string {
	return s.values
}

// NewStringOrStringSlice creates a new StringOrStringSlice from strings
func NewStringOrStringSlice(values ...string) StringOrStringSlice {
	return StringOrStringSlice{values: values}
}

// PolicyDocument represents a bucket policy document
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Id        string            `json:"Id,omitempty"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyStatement represents a single policy statement
type PolicyStatement struct {
	Sid       string                 `json:"Sid,omitempty"`
	Effect    PolicyEffect           `json:"Effect"`
	Action    StringOrStringSlice    `json:"Action"`
	Resource  StringOrStringSlice    `json:"Resource"`
	Condition map[string]interface{} `json:"Condition,omitempty"`
}

// PolicyEffect represents Allow or Deny
type PolicyEffect string

const (
	PolicyEffectAllow PolicyEffect = "Allow"
	PolicyEffectDeny  PolicyEffect = "Deny"
)

// Verdict is the result of running a validator. Errors block acceptance,
// warnings do not. Both lists keep the insertion order of the checks that
// produced them, so identical input always yields an identical verdict.
type Verdict struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// IsValid reports whether the verdict carries no errors
func (v *Verdict) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *Verdict) addError(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Verdict) addWarning(format string, args ...interface{}) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// SuggestionKind classifies a typing suggestion
type SuggestionKind string

const (
	SuggestionHint    SuggestionKind = "hint"
	SuggestionWarning SuggestionKind = "warning"
	SuggestionError   SuggestionKind = "error"
	SuggestionSuccess SuggestionKind = "success"
)

// Suggestion is a single piece of incremental typing guidance. At most one
// suggestion is produced per partial input; a nil suggestion tells the caller
// to fall back to the full principal verdict.
type Suggestion struct {
	Kind    SuggestionKind `json:"kind"`
	Message string         `json:"message"`
}

func hint(format string, args ...interface{}) *Suggestion {
	return &Suggestion{Kind: SuggestionHint, Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...interface{}) *Suggestion {
	return &Suggestion{Kind: SuggestionWarning, Message: fmt.Sprintf(format, args...)}
}

func errorSuggestion(format string, args ...interface{}) *Suggestion {
	return &Suggestion{Kind: SuggestionError, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...interface{}) *Suggestion {
	return &Suggestion{Kind: SuggestionSuccess, Message: fmt.Sprintf(format, args...)}
}
