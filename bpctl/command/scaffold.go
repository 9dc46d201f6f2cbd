package command

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	scaffoldOutput *string
)

func init() {
	cmdScaffold.Run = runScaffold // break init cycle
	scaffoldOutput = cmdScaffold.Flag.String("output", "", "if not empty, save the configuration file to this directory")
}

var cmdScaffold = &Command{
	UsageLine: "scaffold -output=.",
	Short:     "generate a default bpctl.toml configuration file",
	Long: `Generate the default bpctl.toml and print it to stdout, or save it
  to the directory given by -output.

  bpctl looks for bpctl.toml in the current directory, in $HOME/.bpctl,
  and in /etc/bpctl/, in that order.

  `,
}

func runScaffold(cmd *Command, args []string) bool {
	if *scaffoldOutput == "" {
		fmt.Println(BPCTL_TOML_EXAMPLE)
		return true
	}
	target := filepath.Join(*scaffoldOutput, "bpctl.toml")
	if err := os.WriteFile(target, []byte(BPCTL_TOML_EXAMPLE+"\n"), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "scaffold: writing %s: %v\n", target, err)
		return true
	}
	fmt.Printf("wrote %s\n", target)
	return true
}

const BPCTL_TOML_EXAMPLE = `# Put this file to one of the locations, with descending priority
#    ./bpctl.toml
#    $HOME/.bpctl/bpctl.toml
#    /etc/bpctl/bpctl.toml

[generate]
# defaults applied when the matching flag is not given
effect = "Allow"
path = "*"
# actions = ["s3:GetObject", "s3:ListBucket"]

[shell]
# where shell history is kept, defaults to a file in the temp directory
# history_file = "/home/me/.bpctl/history"`
