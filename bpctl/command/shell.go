package command

import (
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/tidwall/match"

	"github.com/ipcld/bpctl/bpctl/policy"
	"github.com/ipcld/bpctl/bpctl/util"
)

func init() {
	cmdShell.Run = runShell // break init cycle
}

var cmdShell = &Command{
	UsageLine: "shell",
	Short:     "start an interactive policy composer",
	Long: `Start an interactive shell to compose a bucket policy step by step.

  Bucket names and principals are checked as they are entered, and partial
  principals get a single typing suggestion. Type "help" inside the shell
  for the command list.

  `,
}

var (
	line        *liner.State
	historyPath = path.Join(os.TempDir(), "bpctl-shell")
)

// shellState accumulates the selections of one composing session.
type shellState struct {
	bucket       string
	principal    string
	effect       policy.PolicyEffect
	resourcePath string
	actions      []string
	condition    string
}

var shellCommands = []string{
	"actions", "bucket", "condition", "effect", "exit", "generate",
	"help", "path", "principal", "reset", "show", "validate",
}

func runShell(cmd *Command, args []string) bool {

	util.LoadConfiguration("bpctl", false)
	v := util.GetViper()
	if p := v.GetString("shell.history_file"); p != "" {
		historyPath = p
	}

	line = liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)

	setCompletionHandler()
	loadHistory()
	defer saveHistory()

	reg, _ := regexp.Compile(`'.*?'|".*?"|\S+`)

	state := &shellState{
		effect:       policy.PolicyEffectAllow,
		resourcePath: "*",
	}

	fmt.Println(`bpctl shell. Type "help" for the command list, "exit" to leave.`)

	for {
		entered, err := line.Prompt("bpctl> ")
		if err != nil {
			if err != io.EOF {
				fmt.Printf("%v\n", err)
			}
			return true
		}

		for _, one := range strings.Split(entered, ";") {
			if processEachCmd(reg, one, state) {
				return true
			}
		}
	}
}

func processEachCmd(reg *regexp.Regexp, entered string, state *shellState) bool {
	cmds := reg.FindAllString(entered, -1)
	if len(cmds) == 0 {
		return false
	}

	line.AppendHistory(entered)

	args := make([]string, len(cmds[1:]))
	for i := range args {
		args[i] = strings.Trim(cmds[1+i], "\"'")
	}

	switch cmds[0] {
	case "help", "?":
		printShellHelp()
	case "exit", "quit":
		return true
	case "bucket":
		shellSetBucket(state, args)
	case "principal":
		shellSetPrincipal(state, args)
	case "effect":
		shellSetEffect(state, args)
	case "path":
		shellSetPath(state, args)
	case "actions":
		shellSetActions(state, args)
	case "condition":
		shellSetCondition(state, args)
	case "show":
		shellShow(state)
	case "generate":
		shellGenerate(state)
	case "validate":
		shellValidate(args)
	case "reset":
		*state = shellState{effect: policy.PolicyEffectAllow, resourcePath: "*"}
		fmt.Println("selections cleared")
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %v\n", cmds[0])
	}
	return false
}

func shellSetBucket(state *shellState, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: bucket <name>")
		return
	}
	verdict := policy.ValidateBucketName(args[0])
	printVerdict("bucket name", verdict)
	if verdict.IsValid() {
		state.bucket = args[0]
		fmt.Printf("bucket = %s\n", state.bucket)
	}
}

func shellSetPrincipal(state *shellState, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: principal <arn, canonical id, service, or *>")
		return
	}
	if suggestion := policy.SuggestPrincipal(args[0]); suggestion != nil && suggestion.Kind != policy.SuggestionSuccess {
		fmt.Printf("%s: %s\n", suggestion.Kind, suggestion.Message)
	}
	verdict := policy.ValidatePrincipal(args[0])
	printVerdict("principal", verdict)
	if verdict.IsValid() {
		state.principal = args[0]
		fmt.Printf("principal = %s\n", state.principal)
	}
}

func shellSetEffect(state *shellState, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: effect Allow|Deny")
		return
	}
	switch args[0] {
	case string(policy.PolicyEffectAllow):
		state.effect = policy.PolicyEffectAllow
	case string(policy.PolicyEffectDeny):
		state.effect = policy.PolicyEffectDeny
	default:
		fmt.Fprintf(os.Stderr, "effect must be Allow or Deny, got %q\n", args[0])
		return
	}
	fmt.Printf("effect = %s\n", state.effect)
}

func shellSetPath(state *shellState, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: path <object path fragment, * for all>")
		return
	}
	state.resourcePath = args[0]
	fmt.Printf("path = %s\n", state.resourcePath)
}

func shellSetActions(state *shellState, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: actions <name>... | actions add <name>... | actions clear")
		return
	}
	switch args[0] {
	case "clear":
		state.actions = nil
	case "add":
		state.actions = append(state.actions, args[1:]...)
	default:
		state.actions = append([]string(nil), args...)
	}
	for _, action := range state.actions {
		if action == "*" || match.IsPattern(action) {
			continue
		}
		if !policy.IsKnownS3ActionName(strings.TrimPrefix(action, "s3:")) {
			fmt.Printf("warning: %s is not a known action name\n", action)
		}
	}
	fmt.Printf("actions = %v\n", state.actions)
}

func shellSetCondition(state *shellState, args []string) {
	if len(args) == 0 {
		state.condition = ""
		fmt.Println("condition cleared")
		return
	}
	state.condition = strings.Join(args, " ")
	fmt.Printf("condition = %s\n", state.condition)
}

func shellShow(state *shellState) {
	fmt.Printf("bucket    = %s\n", state.bucket)
	fmt.Printf("principal = %s\n", state.principal)
	fmt.Printf("effect    = %s\n", state.effect)
	fmt.Printf("path      = %s\n", state.resourcePath)
	fmt.Printf("actions   = %v\n", state.actions)
	fmt.Printf("condition = %s\n", state.condition)
}

func shellGenerate(state *shellState) {
	if state.bucket == "" {
		fmt.Fprintln(os.Stderr, "set a bucket first")
		return
	}
	doc, err := policy.Assemble(policy.AssembleRequest{
		Bucket:        state.bucket,
		Effect:        state.effect,
		ResourcePath:  state.resourcePath,
		Actions:       state.actions,
		ConditionText: state.condition,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	rendered, err := outputJson.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println(string(rendered))
}

func shellValidate(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: validate <policy.json>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	var value interface{}
	if err := outputJson.Unmarshal(data, &value); err != nil {
		fmt.Fprintf(os.Stderr, "%s is not valid JSON: %v\n", args[0], err)
		return
	}
	verdict := policy.ValidateDocument(value)
	printVerdict(args[0], verdict)
	if verdict.IsValid() {
		fmt.Printf("%s: ok, %d warning(s)\n", args[0], len(verdict.Warnings))
	}
}

func printShellHelp() {
	fmt.Println(`Type one command per line. Quotes group arguments with spaces.`)
	msgs := map[string]string{
		"actions":   "set the action list, or \"actions add ...\" / \"actions clear\"",
		"bucket":    "set and check the target bucket name",
		"condition": "set the condition JSON, no argument clears it",
		"effect":    "set the statement effect, Allow or Deny",
		"exit":      "leave the shell",
		"generate":  "assemble and print the policy document",
		"help":      "print this list",
		"path":      "set the object path fragment",
		"principal": "set and check the principal",
		"reset":     "clear all selections",
		"show":      "print the current selections",
		"validate":  "validate a policy document file",
	}
	names := make([]string, 0, len(msgs))
	for name := range msgs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-10s # %s\n", name, msgs[name])
	}
}

func setCompletionHandler() {
	line.SetCompleter(func(prefix string) (c []string) {
		for _, name := range shellCommands {
			if strings.HasPrefix(name, strings.ToLower(prefix)) {
				c = append(c, name)
			}
		}
		return
	})
}

func loadHistory() {
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

func saveHistory() {
	if f, err := os.Create(historyPath); err != nil {
		fmt.Printf("Error creating history file: %v\n", err)
	} else {
		if _, err = line.WriteHistory(f); err != nil {
			fmt.Printf("Error writing history file: %v\n", err)
		}
		f.Close()
	}
}
