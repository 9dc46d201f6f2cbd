package command

import (
	"fmt"
	"io"
	"os"

	"github.com/ipcld/bpctl/bpctl/policy"
)

func init() {
	cmdValidate.Run = runValidate // break init cycle
}

var cmdValidate = &Command{
	UsageLine: "validate [policy.json]",
	Short:     "validate a bucket policy document",
	Long: `Validate a bucket policy document read from a file, or from stdin
  when no file is given.

  Structural problems are reported as errors, suspicious but tolerated
  constructs as warnings. The exit status is non-zero when the document
  has errors or cannot be parsed.

  `,
}

func runValidate(cmd *Command, args []string) bool {

	var data []byte
	var err error
	source := "stdin"
	if len(args) > 0 {
		source = args[0]
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: reading %s: %v\n", source, err)
		os.Exit(1)
	}

	var value interface{}
	if err := outputJson.Unmarshal(data, &value); err != nil {
		fmt.Fprintf(os.Stderr, "validate: %s is not valid JSON: %v\n", source, err)
		os.Exit(1)
	}

	verdict := policy.ValidateDocument(value)
	printVerdict(source, verdict)
	if !verdict.IsValid() {
		os.Exit(1)
	}

	fmt.Printf("%s: ok, %d warning(s)\n", source, len(verdict.Warnings))
	return true
}
