package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/iocontext"
	"github.com/storefront/storefront-cli/internal/outfmt"
)

// getJQQuery returns the jq query from --jq or --query flags.
// --jq takes precedence over --query.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func newTabWriterFromCmd(cmd *cobra.Command) *tabwriter.Writer {
	return newTabWriter(iocontext.GetIO(cmd.Context()).Out)
}

// printJSON writes v in the structured output mode, applying --query,
// --template and --compact-json.
func printJSON(cmd *cobra.Command, v any) error {
	ctx := cmd.Context()
	ioStreams := iocontext.GetIO(ctx)
	f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)
	if !outfmt.IsJSON(ctx) {
		return outfmt.WriteJSONFiltered(ioStreams.Out, v, outfmt.GetQuery(ctx), outfmt.IsCompact(ctx))
	}
	return f.Output(v)
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	return outfmt.WriteJSON(iocontext.GetIO(cmd.Context()).ErrOut, v)
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func printAction(cmd *cobra.Command, action, resource string, id any, name string) {
	if flags.Quiet || isJSON(cmd) {
		return
	}

	message := fmt.Sprintf("%s %s", action, resource)
	if id != nil {
		if value := fmt.Sprint(id); value != "" {
			message = fmt.Sprintf("%s %s", message, value)
		}
	}
	if name != "" {
		message = fmt.Sprintf("%s: %s", message, name)
	}
	_, _ = fmt.Fprintln(iocontext.GetIO(cmd.Context()).Out, message)
}

// normalizeEnum lowercases and trims input, then accepts an exact match or
// a unique prefix of one of valid.
func normalizeEnum(flagName, input string, valid []string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", api.NewValidationError(flagName, input, valid)
	}

	for _, v := range valid {
		if input == v {
			return v, nil
		}
	}

	var matches []string
	for _, v := range valid {
		if strings.HasPrefix(v, input) {
			matches = append(matches, v)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", api.NewValidationError(flagName, input, valid)
	default:
		return "", fmt.Errorf("ambiguous %s %q: matches %s", flagName, input, strings.Join(matches, ", "))
	}
}

func registerStaticCompletions(cmd *cobra.Command, flagName string, values []string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}

// maybeDryRun prints preview and reports true when --dry-run is set. The
// caller returns right after without touching the API.
func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if preview == nil {
		preview = &dryrun.Preview{}
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	if isJSON(cmd) {
		return true, preview.WriteJSON(ioStreams.Out)
	}
	preview.Write(ioStreams.Out)
	return true, nil
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed. Aliases then satisfy Cobra's
// MarkFlagRequired check.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// aliasBridgeSliceValue also forwards pflag.SliceValue.
type aliasBridgeSliceValue struct {
	aliasBridgeValue
	slice pflag.SliceValue
}

func (v *aliasBridgeSliceValue) Append(s string) error     { return v.slice.Append(s) }
func (v *aliasBridgeSliceValue) Replace(ss []string) error { return v.slice.Replace(ss) }
func (v *aliasBridgeSliceValue) GetSlice() []string        { return v.slice.GetSlice() }

// flagAlias registers a hidden alias for an existing flag. Both share the
// same Value.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	bridge := &aliasBridgeValue{Value: f.Value, canonical: f}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		a.Value = &aliasBridgeSliceValue{aliasBridgeValue: *bridge, slice: sv}
	} else {
		a.Value = bridge
	}
	// The alias is never independently required.
	ann := map[string][]string{"alias-of": {name}}
	for k, v := range f.Annotations {
		if k == cobra.BashCompOneRequiredFlag {
			continue
		}
		ann[k] = v
	}
	a.Annotations = ann
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}

	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if found {
				return
			}
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name && fs.Changed(f.Name) {
				found = true
			}
		})
		return found
	}

	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type confirmOptions struct {
	Prompt              string
	Expected            string
	CancelMessage       string
	Force               bool
	RequireForceForJSON bool
}

func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes {
		opts.Force = true
	}
	if opts.RequireForceForJSON && isJSON(cmd) && !opts.Force {
		return false, fmt.Errorf("--force flag is required when using --output json")
	}
	if opts.Force {
		return true, nil
	}
	if flags.NoInput {
		return false, fmt.Errorf("confirmation required: pass --force or --yes")
	}

	out := cmd.OutOrStdout()
	if opts.Prompt != "" {
		_, _ = fmt.Fprint(out, opts.Prompt)
	}

	reader := bufio.NewReader(iocontext.GetIO(cmd.Context()).In)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}

	expected := strings.TrimSpace(strings.ToLower(opts.Expected))
	if expected == "" {
		expected = "y"
	}
	if strings.TrimSpace(strings.ToLower(response)) != expected {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(out, opts.CancelMessage)
		}
		return false, nil
	}
	return true, nil
}

// loadAtValue resolves @path and @- (stdin) references.
func loadAtValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	target := strings.TrimPrefix(value, "@")
	if target == "" {
		return "", fmt.Errorf("invalid @ value: missing path (use @- for stdin)")
	}
	if target == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", target, err)
	}
	return string(data), nil
}

// ParseStringListFlag accepts comma/whitespace separated values, a JSON
// array, or an @path / @- reference to either.
func ParseStringListFlag(value string) ([]string, error) {
	raw, err := loadAtValue(value)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("no values provided")
	}

	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		var out []string
		for _, v := range arr {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no values provided")
		}
		return out, nil
	}

	out := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("no values provided")
	}
	return out, nil
}

// errAlreadyHandled marks an error RunE already printed. Cobra still sees
// a failure (for the exit code) but root does not print it again.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			if isJSON(cmd) {
				if structured := api.StructuredErrorFromError(err); structured != nil {
					_ = printJSONErr(cmd, structured)
				}
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			}
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}
