package command

import (
	"fmt"
	"os"

	"github.com/ipcld/bpctl/bpctl/policy"
)

var (
	lintOptions LintOptions
)

type LintOptions struct {
	bucket    *string
	principal *string
	typing    *string
}

func init() {
	cmdLint.Run = runLint // break init cycle
	lintOptions.bucket = cmdLint.Flag.String("bucket", "", "bucket name to check")
	lintOptions.principal = cmdLint.Flag.String("principal", "", "principal to check")
	lintOptions.typing = cmdLint.Flag.String("typing", "", "partial principal, returns the single in-progress suggestion")
}

var cmdLint = &Command{
	UsageLine: "lint -bucket=my-bucket -principal=arn:aws:iam::123456789012:user/alice",
	Short:     "check bucket names and principals without generating anything",
	Long: `Check a bucket name or a principal and print every finding.

  With -typing, the value is treated as a principal still being typed and
  at most one suggestion is printed. A complete principal falls back to
  the full check.

  `,
}

func runLint(cmd *Command, args []string) bool {

	ran := false

	if *lintOptions.bucket != "" {
		ran = true
		verdict := policy.ValidateBucketName(*lintOptions.bucket)
		printVerdict("bucket name", verdict)
		if verdict.IsValid() {
			fmt.Printf("bucket name: ok, %d warning(s)\n", len(verdict.Warnings))
		} else {
			os.Exit(1)
		}
	}

	if *lintOptions.principal != "" {
		ran = true
		verdict := policy.ValidatePrincipal(*lintOptions.principal)
		printVerdict("principal", verdict)
		if verdict.IsValid() {
			fmt.Printf("principal: ok, %d warning(s)\n", len(verdict.Warnings))
		} else {
			os.Exit(1)
		}
	}

	if *lintOptions.typing != "" {
		ran = true
		if suggestion := policy.SuggestPrincipal(*lintOptions.typing); suggestion != nil {
			fmt.Printf("%s: %s\n", suggestion.Kind, suggestion.Message)
		} else {
			verdict := policy.ValidatePrincipal(*lintOptions.typing)
			printVerdict("principal", verdict)
			if !verdict.IsValid() {
				os.Exit(1)
			}
		}
	}

	return ran
}
