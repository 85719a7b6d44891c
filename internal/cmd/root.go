package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/storefront/storefront-cli/internal/config"
	"github.com/storefront/storefront-cli/internal/debug"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/iocontext"
	"github.com/storefront/storefront-cli/internal/outfmt"
	"github.com/storefront/storefront-cli/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output       string
	Debug        bool
	DryRun       bool
	Quiet        bool
	Silent       bool
	NoInput      bool
	Yes          bool
	JSON         bool
	AllowPrivate bool
	Query        string
	QueryFile    string
	JQ           string
	ItemsOnly    bool
	Fields       string
	Template     string
	Compact      bool
	Timeout      time.Duration
	BaseURL      string
	Token        string
	Profile      string
}

// flags holds the global command flags. It is package-level mutable state
// and MUST be reset at the start of every Execute() call; tests rely on
// that reset for clean state.
var flags = rootFlags{Output: "text"}

// defaultOutput takes STOREFRONT_OUTPUT or the settings file value.
func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("STOREFRONT_OUTPUT")); value != "" {
		return normalizeOutputFormat(value)
	}
	if settings, err := config.LoadSettings(); err == nil && settings.Output != "" {
		return normalizeOutputFormat(settings.Output)
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func normalizeOutputFormat(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "ndjson":
		return "jsonl"
	case "yml":
		return "yaml"
	}
	return value
}

func loadQueryFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("--query-file requires a file path")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read --query-file %q: %w", path, err)
		}
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("--query-file %q is empty", path)
	}
	return query, nil
}

//go:embed help.txt
var helpText string

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// .env in the working directory; exported variables win.
	_ = config.LoadDotEnv(".env")

	flags = rootFlags{
		Output:       defaultOutput(),
		AllowPrivate: parseBoolEnv("STOREFRONT_ALLOW_PRIVATE"),
	}

	root := &cobra.Command{
		Use:                "sf",
		Short:              "CLI for the storefront commerce API",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError does did-you-mean
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			flags.Output = normalizeOutputFormat(flags.Output)
			if flags.QueryFile != "" {
				if flags.Query != "" || flags.JQ != "" {
					return fmt.Errorf("--query-file cannot be used with --query or --jq")
				}
				queryFromFile, err := loadQueryFile(flags.QueryFile)
				if err != nil {
					return err
				}
				flags.Query = queryFromFile
			}

			if flags.Yes {
				flags.NoInput = true
			}

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			needsJSON := flags.Query != "" || flags.JQ != "" || flags.Fields != "" || flags.Template != "" || flags.ItemsOnly
			if needsJSON && flags.Output == "text" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--jq/--query/--query-file/--fields/--template/--items-only require --output json, jsonl, or yaml (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)

			ioStreams := iocontext.DefaultIO()
			if flags.Silent || flags.Quiet {
				ioStreams.ErrOut = io.Discard
			}
			if flags.Quiet && mode == outfmt.Text {
				ioStreams.Out = io.Discard
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			allowPrivate := parseBoolEnv("STOREFRONT_ALLOW_PRIVATE") || flags.AllowPrivate
			validation.SetAllowPrivate(allowPrivate)
			if flags.AllowPrivate && !flags.Silent && !flags.Quiet {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: allowing private/localhost URLs (use only with trusted targets).")
			}

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)

			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			jqQuery := getJQQuery()
			if flags.Fields != "" {
				if jqQuery != "" {
					return fmt.Errorf("--fields and --query/--jq cannot be used together")
				}
				fields, err := parseFields(flags.Fields)
				if err != nil {
					return err
				}
				jqQuery = buildFieldsQuery(fields)
			}
			if flags.ItemsOnly && jqQuery == "" {
				jqQuery = ".items // ."
			}
			if jqQuery != "" {
				ctx = outfmt.WithQuery(ctx, jqQuery)
			}

			if flags.Template != "" {
				tmpl, err := loadTemplate(flags.Template)
				if err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd.Name() == root.Name() && !cmd.HasParent() {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), helpText)
			return
		}
		defaultHelp(cmd, args)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|yaml (env STOREFRONT_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (overrides STOREFRONT_BASE_URL and the stored profile)")
	pf.StringVar(&flags.Token, "token", "", "Bearer token (overrides STOREFRONT_TOKEN and the keyring)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env STOREFRONT_PROFILE)")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow private/localhost URLs (unsafe)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Preview changes without executing")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.QueryFile, "query-file", "", "Read JQ expression from file ('-' for stdin)")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.BoolVar(&flags.ItemsOnly, "items-only", false, "Output only the items array of list results")
	pf.StringVar(&flags.Fields, "fields", "", "Fields to select in JSON output (CSV, JSON array, or @path)")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.Silent, "silent", false, "Suppress non-error output to stderr")
	pf.BoolVar(&flags.NoInput, "no-input", false, "Disable interactive prompts")
	pf.BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render JSON output")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "HTTP request timeout (e.g., 30s, 2m; default from settings)")

	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "qr")
	flagAlias(pf, "query-file", "qf")
	flagAlias(pf, "items-only", "io")
	flagAlias(pf, "items-only", "results-only")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "fields", "fi")
	flagAlias(pf, "silent", "sil")
	flagAlias(pf, "no-input", "ni")
	flagAlias(pf, "template", "tpl")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "allow-private", "ap")
	flagAlias(pf, "profile", "pf")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newProductsCmd())
	root.AddCommand(newOrdersCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newMediaCmd())
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newPagesCmd())
	root.AddCommand(newTagsCmd())
	root.AddCommand(newAttributesCmd())
	root.AddCommand(newProvincesCmd())
	root.AddCommand(newWardsCmd())
	root.AddCommand(newCartCmd())
	root.AddCommand(newOverviewCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			enhanced := enhanceUnknownError(err, root, targetCmd)
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanced)
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden {
						return
					}
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := "sf --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				if path := strings.TrimSpace(targetCmd.CommandPath()); path != "" {
					helpCmd = path + " --help"
				}
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimSpace(s[idx+1:])
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimRight(rest, ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}

func parseFields(input string) ([]string, error) {
	fields, err := ParseStringListFlag(input)
	if err != nil {
		if strings.Contains(err.Error(), "no values provided") {
			return nil, fmt.Errorf("--fields must include at least one field")
		}
		return nil, fmt.Errorf("invalid --fields value: %w", err)
	}
	return fields, nil
}

// buildFieldsQuery selects fields from an object, every element of an
// array, or every element of a list result's items.
func buildFieldsQuery(fields []string) string {
	var parts []string
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", jqKey(field), jqPath(field)))
	}
	expr := strings.Join(parts, ", ")
	return fmt.Sprintf("if type==\"array\" then map({%[1]s}) elif (type==\"object\" and has(\"items\")) then .items |= map({%[1]s}) else {%[1]s} end", expr)
}

func jqKey(key string) string {
	return strconv.Quote(key)
}

func jqPath(path string) string {
	var expr strings.Builder
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			continue
		}
		expr.WriteString("[" + strconv.Quote(seg) + "]")
	}
	if expr.Len() == 0 {
		return "."
	}
	return "." + expr.String()
}

func loadTemplate(value string) (string, error) {
	if strings.HasPrefix(value, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	}
	return value, nil
}
