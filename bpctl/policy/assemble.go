package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	jsoniter "github.com/json-iterator/go"
)

// ErrEmptyActionSet is returned by Assemble when no actions remain after
// merging the selected and additional actions.
var ErrEmptyActionSet = errors.New("at least one action is required")

// InvalidConditionError is returned by Assemble when the condition text is
// not parseable JSON. The assembler does not validate condition structure
// beyond parseability; that is ValidateDocument's job.
type InvalidConditionError struct {
	Cause error
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("condition is not valid JSON: %v", e.Cause)
}

func (e *InvalidConditionError) Unwrap() error {
	return e.Cause
}

// AssembleRequest carries the user selections Assemble turns into a policy
// document. Bucket is assumed to have already passed ValidateBucketName;
// the assembler does not re-validate it.
type AssembleRequest struct {
	// Bucket is the target bucket name.
	Bucket string

	// Effect is Allow or Deny.
	Effect PolicyEffect

	// ResourcePath is the object path fragment; "*" when blank.
	ResourcePath string

	// Actions are the selected action identifiers, in order.
	Actions []string

	// AdditionalActions is free-form action text, one action per line.
	// Lines are trimmed and blank lines dropped before merging.
	AdditionalActions string

	// ConditionText is optional raw condition JSON.
	ConditionText string
}

// sidNode issues process-unique tokens for synthesized statement IDs.
// Node number 1 is always in range, so NewNode cannot fail here.
var sidNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}()

var conditionJson = jsoniter.ConfigCompatibleWithStandardLibrary

// Assemble builds a single-statement policy document from user selections.
// It fails with ErrEmptyActionSet when the merged action list is empty and
// with *InvalidConditionError when the condition text does not parse; every
// other input yields a document. The document never carries a Principal,
// and its Statement array is never empty.
func Assemble(req AssembleRequest) (*PolicyDocument, error) {
	actions := mergeActions(req.Actions, req.AdditionalActions)
	if len(actions) == 0 {
		return nil, ErrEmptyActionSet
	}

	resourcePath := req.ResourcePath
	if resourcePath == "" {
		resourcePath = "*"
	}

	resources := selectResources(req.Bucket, resourcePath, actions)

	statement := PolicyStatement{
		Sid:      fmt.Sprintf("Generated%s", sidNode.Generate()),
		Effect:   req.Effect,
		Action:   NewStringOrStringSlice(actions...),
		Resource: NewStringOrStringSlice(resources...),
	}

	if strings.TrimSpace(req.ConditionText) != "" {
		var condition map[string]interface{}
		if err := conditionJson.Unmarshal([]byte(req.ConditionText), &condition); err != nil {
			return nil, &InvalidConditionError{Cause: err}
		}
		statement.Condition = condition
	}

	return &PolicyDocument{
		Version:   PolicyVersion2012_10_17,
		Statement: []PolicyStatement{statement},
	}, nil
}

// mergeActions appends the newline-separated additional actions to the
// selected ones, preserving order. No de-duplication is performed.
func mergeActions(selected []string, additional string) []string {
	actions := make([]string, 0, len(selected))
	for _, action := range selected {
		if action = strings.TrimSpace(action); action != "" {
			actions = append(actions, action)
		}
	}
	for _, line := range strings.Split(additional, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			actions = append(actions, line)
		}
	}
	return actions
}

// selectResources decides which ARN forms the statement needs. Bucket-level
// operations (ListBucket and the GetBucket*/PutBucket* families) require the
// bucket ARN; any action naming objects requires the object ARN. When no
// action implies either form, the object ARN with path "*" keeps Resource
// non-empty.
func selectResources(bucket, resourcePath string, actions []string) []string {
	needsBucket := false
	needsObject := false
	for _, action := range actions {
		if action == "s3:ListBucket" ||
			strings.HasPrefix(action, "s3:GetBucket") ||
			strings.HasPrefix(action, "s3:PutBucket") {
			needsBucket = true
		}
		if strings.Contains(action, "Object") {
			needsObject = true
		}
	}

	var resources []string
	if needsBucket {
		resources = append(resources, S3ResourceArnPrefix+bucket)
	}
	if needsObject {
		resources = append(resources, S3ResourceArnPrefix+bucket+"/"+resourcePath)
	}
	if len(resources) == 0 {
		resources = append(resources, S3ResourceArnPrefix+bucket+"/*")
	}
	return resources
}
