package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/ipcld/bpctl/bpctl/policy"
	"github.com/ipcld/bpctl/bpctl/util"
)

var (
	generateOptions GenerateOptions
)

type GenerateOptions struct {
	bucket       *string
	effect       *string
	resourcePath *string
	actions      *string
	actionsFile  *string
	condition    *string
	principal    *string
	withId       *bool
	check        *bool
	output       *string
}

func init() {
	cmdGenerate.Run = runGenerate // break init cycle
	generateOptions.bucket = cmdGenerate.Flag.String("bucket", "", "target bucket name (required)")
	generateOptions.effect = cmdGenerate.Flag.String("effect", "", "statement effect, Allow or Deny")
	generateOptions.resourcePath = cmdGenerate.Flag.String("path", "", "object path fragment, defaults to *")
	generateOptions.actions = cmdGenerate.Flag.String("actions", "", "comma-separated action identifiers, e.g. s3:GetObject,s3:ListBucket")
	generateOptions.actionsFile = cmdGenerate.Flag.String("actionsFile", "", "file with additional actions, one per line")
	generateOptions.condition = cmdGenerate.Flag.String("condition", "", "condition JSON, or @file to read it from a file")
	generateOptions.principal = cmdGenerate.Flag.String("principal", "", "principal to check before generating; never emitted into the document")
	generateOptions.withId = cmdGenerate.Flag.Bool("id", false, "attach a generated policy Id")
	generateOptions.check = cmdGenerate.Flag.Bool("check", true, "validate the generated document before printing")
	generateOptions.output = cmdGenerate.Flag.String("output", "", "write the document to this file instead of stdout")
}

var cmdGenerate = &Command{
	UsageLine: "generate -bucket=my-bucket -effect=Allow -actions=s3:GetObject",
	Short:     "generate a bucket policy document from selections",
	Long: `Generate a single-statement bucket policy document.

  The bucket name and optional principal are validated first; generation is
  refused when either has errors. Warnings are printed but do not block.
  Defaults for effect, path, and actions can be set in bpctl.toml, see
  "bpctl scaffold".

  The generated document never carries a Principal field: the target cloud
  ignores principals in bucket policies.

  `,
}

var outputJson = jsoniter.ConfigCompatibleWithStandardLibrary

func runGenerate(cmd *Command, args []string) bool {

	util.LoadConfiguration("bpctl", false)
	v := util.GetViper()
	v.SetDefault("generate.effect", "Allow")
	v.SetDefault("generate.path", "*")

	bucket := strings.TrimSpace(*generateOptions.bucket)
	if bucket == "" {
		fmt.Fprintln(os.Stderr, "generate: -bucket is required")
		return false
	}

	bucketVerdict := policy.ValidateBucketName(bucket)
	printVerdict("bucket name", bucketVerdict)
	if !bucketVerdict.IsValid() {
		return true
	}

	if principal := strings.TrimSpace(*generateOptions.principal); principal != "" {
		principalVerdict := policy.ValidatePrincipal(principal)
		printVerdict("principal", principalVerdict)
		if !principalVerdict.IsValid() {
			return true
		}
	}

	effect := *generateOptions.effect
	if effect == "" {
		effect = v.GetString("generate.effect")
	}
	if effect != string(policy.PolicyEffectAllow) && effect != string(policy.PolicyEffectDeny) {
		fmt.Fprintf(os.Stderr, "generate: effect must be Allow or Deny, got %q\n", effect)
		return false
	}

	resourcePath := *generateOptions.resourcePath
	if resourcePath == "" {
		resourcePath = v.GetString("generate.path")
	}

	var actions []string
	for _, action := range strings.Split(*generateOptions.actions, ",") {
		if action = strings.TrimSpace(action); action != "" {
			actions = append(actions, action)
		}
	}
	if len(actions) == 0 {
		actions = v.GetStringSlice("generate.actions")
	}

	additional := ""
	if *generateOptions.actionsFile != "" {
		data, err := os.ReadFile(*generateOptions.actionsFile)
		if err != nil {
			glog.Errorf("reading %s: %v", *generateOptions.actionsFile, err)
			return true
		}
		additional = string(data)
	}

	conditionText, ok := resolveConditionText(*generateOptions.condition)
	if !ok {
		return true
	}

	doc, err := policy.Assemble(policy.AssembleRequest{
		Bucket:            bucket,
		Effect:            policy.PolicyEffect(effect),
		ResourcePath:      resourcePath,
		Actions:           actions,
		AdditionalActions: additional,
		ConditionText:     conditionText,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		return true
	}

	if *generateOptions.withId {
		doc.Id = uuid.NewString()
	}

	if *generateOptions.check {
		raw, err := outputJson.Marshal(doc)
		if err != nil {
			glog.Errorf("marshaling generated document: %v", err)
			return true
		}
		var value interface{}
		if err := outputJson.Unmarshal(raw, &value); err != nil {
			glog.Errorf("re-reading generated document: %v", err)
			return true
		}
		printVerdict("generated document", policy.ValidateDocument(value))
	}

	rendered, err := outputJson.MarshalIndent(doc, "", "  ")
	if err != nil {
		glog.Errorf("marshaling generated document: %v", err)
		return true
	}

	if *generateOptions.output != "" {
		if err := os.WriteFile(*generateOptions.output, append(rendered, '\n'), 0644); err != nil {
			glog.Errorf("writing %s: %v", *generateOptions.output, err)
			return true
		}
		glog.V(1).Infof("wrote policy document to %s", *generateOptions.output)
		return true
	}

	fmt.Println(string(rendered))
	return true
}

// resolveConditionText returns the condition JSON, reading it from a file
// when the flag value starts with @.
func resolveConditionText(flagValue string) (string, bool) {
	if !strings.HasPrefix(flagValue, "@") {
		return flagValue, true
	}
	data, err := os.ReadFile(flagValue[1:])
	if err != nil {
		glog.Errorf("reading condition file %s: %v", flagValue[1:], err)
		return "", false
	}
	return string(data), true
}

// printVerdict writes a verdict's messages to stderr, errors first.
func printVerdict(subject string, verdict *policy.Verdict) {
	for _, message := range verdict.Errors {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", subject, message)
	}
	for _, message := range verdict.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", subject, message)
	}
}
