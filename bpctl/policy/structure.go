package policy

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/match"
)

var sidRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Root and statement keys recognized by the structural validator. Anything
// else is reported as a warning, never an error.
var (
	knownRootKeys = map[string]struct{}{
		"Version":   {},
		"Id":        {},
		"Statement": {},
	}
	knownStatementKeys = map[string]struct{}{
		"Sid":          {},
		"Effect":       {},
		"Principal":    {},
		"NotPrincipal": {},
		"Action":       {},
		"NotAction":    {},
		"Resource":     {},
		"NotResource":  {},
		"Condition":    {},
	}
)

// ValidateDocument structurally validates an arbitrary previously-parsed
// JSON value as a policy document. The caller is responsible for JSON
// syntax; a parse failure must be surfaced before this is called. All
// errors and warnings across the whole document are accumulated in a single
// pass — validation never stops at the first problem, except where a wrong
// container type makes recursing meaningless (e.g. Statement not being an
// array skips the per-statement walk).
func ValidateDocument(value interface{}) *Verdict {
	verdict := &Verdict{}

	doc, ok := value.(map[string]interface{})
	if !ok || doc == nil {
		verdict.addError("Policy document must be a JSON object")
		return verdict
	}

	validateVersion(doc, verdict)

	if id, present := doc["Id"]; present {
		if _, ok := id.(string); !ok {
			verdict.addError("Id must be a string")
		}
	}

	statements, present := doc["Statement"]
	if !present {
		verdict.addError("Policy document must contain a Statement array")
	} else if list, ok := statements.([]interface{}); !ok {
		verdict.addError("Statement must be an array")
	} else if len(list) == 0 {
		verdict.addError("Statement array cannot be empty")
	} else {
		for i, statement := range list {
			validateStatement(i, statement, verdict)
		}
	}

	for _, key := range sortedKeys(doc) {
		if _, ok := knownRootKeys[key]; !ok {
			verdict.addWarning("Unknown top-level key %q", key)
		}
	}

	return verdict
}

func validateVersion(doc map[string]interface{}, verdict *Verdict) {
	version, present := doc["Version"]
	if !present {
		verdict.addError("Policy document must contain a Version")
		return
	}
	str, ok := version.(string)
	if !ok {
		verdict.addError("Version must be a string")
		return
	}
	switch str {
	case PolicyVersion2012_10_17:
	case PolicyVersion2008_10_17:
		verdict.addWarning("Version %s is deprecated; use %s", PolicyVersion2008_10_17, PolicyVersion2012_10_17)
	default:
		verdict.addError("Version must be %s or %s, got %q", PolicyVersion2012_10_17, PolicyVersion2008_10_17, str)
	}
}

func validateStatement(index int, value interface{}, verdict *Verdict) {
	statement, ok := value.(map[string]interface{})
	if !ok || statement == nil {
		verdict.addError("Statement %d must be a JSON object", index)
		return
	}

	if sid, present := statement["Sid"]; present {
		if str, ok := sid.(string); !ok {
			verdict.addError("Statement %d: Sid must be a string", index)
		} else if !sidRegex.MatchString(str) {
			verdict.addError("Statement %d: Sid must contain only letters and numbers", index)
		}
	}

	effect, present := statement["Effect"]
	if !present {
		verdict.addError("Statement %d: Effect is required", index)
	} else if str, ok := effect.(string); !ok || (str != string(PolicyEffectAllow) && str != string(PolicyEffectDeny)) {
		verdict.addError("Statement %d: Effect must be Allow or Deny, got %v", index, effect)
	}

	// The target system discards bucket-policy principals, so a present
	// Principal is never an error and its contents are not inspected.
	if _, present := statement["Principal"]; present {
		verdict.addWarning("Statement %d: Principal is ignored by the target system", index)
	}
	if _, present := statement["NotPrincipal"]; present {
		verdict.addWarning("Statement %d: NotPrincipal is ignored by the target system", index)
	}

	action, hasAction := statement["Action"]
	notAction, hasNotAction := statement["NotAction"]
	switch {
	case hasAction && hasNotAction:
		verdict.addError("Statement %d: Action and NotAction are mutually exclusive", index)
	case !hasAction && !hasNotAction:
		verdict.addError("Statement %d: one of Action or NotAction is required", index)
	case hasAction:
		validateActions(index, "Action", action, verdict)
	default:
		validateActions(index, "NotAction", notAction, verdict)
	}

	resource, hasResource := statement["Resource"]
	notResource, hasNotResource := statement["NotResource"]
	switch {
	case hasResource && hasNotResource:
		verdict.addError("Statement %d: Resource and NotResource are mutually exclusive", index)
	case !hasResource && !hasNotResource:
		verdict.addError("Statement %d: one of Resource or NotResource is required", index)
	case hasResource:
		validateResources(index, "Resource", resource, verdict)
	default:
		validateResources(index, "NotResource", notResource, verdict)
	}

	if condition, present := statement["Condition"]; present {
		validateCondition(index, condition, verdict)
	}

	for _, key := range sortedKeys(statement) {
		if _, ok := knownStatementKeys[key]; !ok {
			verdict.addWarning("Statement %d: unknown key %q", index, key)
		}
	}
}

func validateActions(index int, field string, value interface{}, verdict *Verdict) {
	entries, ok := normalizeToList(value)
	if !ok {
		verdict.addError("Statement %d: %s must be a string or array of strings", index, field)
		return
	}
	if len(entries) == 0 {
		verdict.addError("Statement %d: %s cannot be empty", index, field)
		return
	}

	for _, entry := range entries {
		str, ok := entry.(string)
		if !ok {
			verdict.addError("Statement %d: %s entries must be strings, got %v", index, field, entry)
			continue
		}
		if str == "*" {
			continue
		}
		colon := strings.Index(str, ":")
		if colon < 0 {
			verdict.addError("Statement %d: action %q must take the form service:ActionName", index, str)
			continue
		}
		service, name := str[:colon], str[colon+1:]
		if service != "s3" {
			verdict.addWarning("Statement %d: action %q targets a non-S3 service", index, str)
			continue
		}
		if name != "*" && !match.IsPattern(name) && !IsKnownS3ActionName(name) {
			verdict.addWarning("Statement %d: unrecognized S3 action %q", index, str)
		}
	}
}

func validateResources(index int, field string, value interface{}, verdict *Verdict) {
	entries, ok := normalizeToList(value)
	if !ok {
		verdict.addError("Statement %d: %s must be a string or array of strings", index, field)
		return
	}
	if len(entries) == 0 {
		verdict.addError("Statement %d: %s cannot be empty", index, field)
		return
	}

	for _, entry := range entries {
		str, ok := entry.(string)
		if !ok {
			verdict.addError("Statement %d: %s entries must be strings, got %v", index, field, entry)
			continue
		}
		if str == "*" {
			continue
		}
		if !strings.HasPrefix(str, S3ResourceArnPrefix) {
			verdict.addError("Statement %d: resource %q must be * or start with %s", index, str, S3ResourceArnPrefix)
			continue
		}
		validateResourcePath(index, str[len(S3ResourceArnPrefix):], str, verdict)
	}
}

// validateResourcePath checks the bucket[/path] part of a resource ARN. The
// bucket segment gets a lighter re-check than live input validation: a bad
// charset or edge character is a warning here, since this is post-hoc
// document review rather than input validation.
func validateResourcePath(index int, path, full string, verdict *Verdict) {
	bucket := path
	hasObjectPath := false
	if slash := strings.Index(path, "/"); slash >= 0 {
		bucket = path[:slash]
		hasObjectPath = true
	}

	if bucket == "" {
		verdict.addError("Statement %d: resource %q has an empty bucket name", index, full)
		return
	}
	if strings.Contains(path, "//") {
		verdict.addError("Statement %d: resource %q contains a doubled slash", index, full)
	}

	if hasObjectPath {
		return
	}

	if len(bucket) > 63 {
		verdict.addError("Statement %d: bucket name in %q exceeds 63 characters", index, full)
	}
	if !bucketNameCharsetRegex.MatchString(bucket) {
		verdict.addWarning("Statement %d: bucket name in %q contains characters outside lowercase letters, numbers, periods, and hyphens", index, full)
	}
	if !bucketNameEdgeRegex.MatchString(bucket[:1]) || !bucketNameEdgeRegex.MatchString(bucket[len(bucket)-1:]) {
		verdict.addWarning("Statement %d: bucket name in %q must begin and end with a lowercase letter or number", index, full)
	}
	if strings.Contains(bucket, "..") {
		verdict.addWarning("Statement %d: bucket name in %q contains adjacent periods", index, full)
	}
}

func validateCondition(index int, value interface{}, verdict *Verdict) {
	condition, ok := value.(map[string]interface{})
	if !ok || condition == nil {
		verdict.addError("Statement %d: Condition must be a JSON object", index)
		return
	}

	for _, operator := range sortedKeys(condition) {
		bare := strings.TrimPrefix(operator, "ForAllValues:")
		bare = strings.TrimPrefix(bare, "ForAnyValue:")
		if !IsKnownConditionOperator(bare) {
			verdict.addError("Statement %d: unknown condition operator %q", index, operator)
		}
		if block, ok := condition[operator].(map[string]interface{}); !ok || block == nil {
			verdict.addError("Statement %d: condition operator %q must map to a JSON object", index, operator)
		}
	}
}

// sortedKeys keeps message order deterministic for identical input.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// normalizeToList accepts a bare value or an array and returns the entries.
// The bare-string and array forms of Action/Resource are equivalent.
func normalizeToList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case string:
		return []interface{}{v}, true
	case []interface{}:
		return v, true
	default:
		return nil, false
	}
}
