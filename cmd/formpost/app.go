package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	formpost "github.com/goliatone/go-formpost"
	"github.com/goliatone/go-formpost/internal/config"
	"github.com/goliatone/go-formpost/pkg/download"
	"github.com/goliatone/go-formpost/pkg/notify"
	pkgopenapi "github.com/goliatone/go-formpost/pkg/openapi"
	"github.com/goliatone/go-formpost/pkg/prompt"
	"github.com/goliatone/go-formpost/pkg/status"
	"github.com/goliatone/go-formpost/pkg/submit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// flagValues holds the raw command line; only flags the user set override
// the loaded configuration.
type flagValues struct {
	configPath     string
	envFiles       []string
	server         string
	spec           string
	operation      string
	output         string
	filename       string
	overwrite      bool
	timeout        string
	fields         []string
	files          []string
	interactive    bool
	requiredOnly   bool
	skipValidation bool
	preset         string
	verbose        bool
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flags  flagValues
	cfg    *config.Config
	logger *zap.Logger

	// driver overrides the survey prompt driver.
	driver prompt.Driver
	// alerted is set once a failure was shown through the notifier.
	alerted bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr, logger: zap.NewNop()}
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return a.report(root.ExecuteContext(ctx))
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "formpost",
		Short: "Submit the deck generation form and save the result",
		Long: `formpost posts the generation form described by an OpenAPI operation
and saves the binary response (generated.pptx by default).

Values come from formpost.yaml, FORMPOST_* environment variables (also read
from .env) and flags, in that order. Missing values are prompted for when
stdin is a terminal.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runSubmit,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default formpost.yaml when present)")
	pf.StringSliceVar(&a.flags.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	pf.StringVarP(&a.flags.server, "server", "s", "", "service base URL, overrides the document servers")
	pf.StringVar(&a.flags.spec, "spec", "", "OpenAPI document path or URL (default built-in definition)")
	pf.StringVarP(&a.flags.operation, "operation", "O", "", "form operation ID (default generate)")
	pf.StringVar(&a.flags.preset, "preset", "", "YAML preset relabelling, hiding or reordering fields")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	a.addSubmitFlags(root)

	root.AddCommand(a.submitCommand(), a.fieldsCommand(), a.healthCommand())
	return root
}

// addSubmitFlags registers the submission flags on cmd. The root command and
// its submit alias share the same destinations.
func (a *app) addSubmitFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&a.flags.output, "output", "o", "", "directory the response is saved to")
	fs.StringVar(&a.flags.filename, "filename", "", "name of the saved file (default generated.pptx)")
	fs.BoolVar(&a.flags.overwrite, "overwrite", false, "replace an existing file instead of adding a numbered suffix")
	fs.StringVar(&a.flags.timeout, "timeout", "", "submission timeout, 0 disables it (default 5m)")
	fs.StringArrayVarP(&a.flags.fields, "field", "f", nil, "form value as name=value, @path reads the value from a file (repeatable)")
	fs.StringArrayVar(&a.flags.files, "file", nil, "file attachment as name=path (repeatable)")
	fs.BoolVarP(&a.flags.interactive, "interactive", "i", false, "prompt for missing values (default when stdin is a terminal)")
	fs.BoolVar(&a.flags.requiredOnly, "required-only", false, "only prompt for required fields")
	fs.BoolVar(&a.flags.skipValidation, "skip-validation", false, "send values without checking them first")
}

func (a *app) submitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the form (the default command)",
		Args:  cobra.NoArgs,
		RunE:  a.runSubmit,
	}
	a.addSubmitFlags(cmd)
	return cmd
}

func (a *app) fieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields of the form operation",
		Args:  cobra.NoArgs,
		RunE:  a.runFields,
	}
}

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the generation service is up",
		Args:  cobra.NoArgs,
		RunE:  a.runHealth,
	}
}

// setup loads configuration, applies flags and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(a.flags.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if err := a.applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(a.stderr, cfg.Logging.Level, a.flags.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("configuration loaded",
		zap.String("server", cfg.Server),
		zap.String("spec", cfg.Spec),
		zap.String("operation", cfg.Operation),
		zap.String("output_dir", cfg.OutputDir),
	)
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("server", &cfg.Server, a.flags.server)
	set("spec", &cfg.Spec, a.flags.spec)
	set("operation", &cfg.Operation, a.flags.operation)
	set("output", &cfg.OutputDir, a.flags.output)
	set("filename", &cfg.Filename, a.flags.filename)
	set("timeout", &cfg.Timeout, a.flags.timeout)
	if flags.Changed("overwrite") {
		cfg.Overwrite = a.flags.overwrite
	}
	if flags.Changed("interactive") {
		interactive := a.flags.interactive
		cfg.Interactive = &interactive
	}

	for _, raw := range a.flags.fields {
		name, value, err := parseAssignment("--field", raw)
		if err != nil {
			return err
		}
		if value, err = readValue(value); err != nil {
			return fmt.Errorf("--field %s: %w", name, err)
		}
		cfg.Fields[name] = value
	}
	for _, raw := range a.flags.files {
		name, path, err := parseAssignment("--file", raw)
		if err != nil {
			return err
		}
		cfg.Files[name] = path
	}
	return nil
}

// parseAssignment splits "name=value".
func parseAssignment(flag, raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("%s %q: expected name=value", flag, raw)
	}
	return name, value, nil
}

// readValue resolves "@path" to the file contents. "@@" escapes a literal
// leading @.
func readValue(value string) (string, error) {
	switch {
	case strings.HasPrefix(value, "@@"):
		return value[1:], nil
	case strings.HasPrefix(value, "@"):
		data, err := os.ReadFile(value[1:])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return value, nil
}

func newLogger(out io.Writer, level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zcfg.EncoderConfig),
		zapcore.Lock(zapcore.AddSync(out)),
		zcfg.Level,
	)
	return zap.New(core, zap.AddCaller()), nil
}

func (a *app) interactive() bool {
	if a.cfg.Interactive != nil {
		return *a.cfg.Interactive
	}
	if f, ok := a.stdin.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func (a *app) promptDriver() prompt.Driver {
	if a.driver != nil {
		return a.driver
	}
	in, inOK := a.stdin.(*os.File)
	out, outOK := a.stderr.(*os.File)
	if inOK && outOK {
		return prompt.NewSurveyDriverWithStdio(prompt.Stdio{In: in, Out: out, Err: out})
	}
	return prompt.NewSurveyDriver()
}

// client wires the pipeline for the loaded configuration. The returned line
// must be finished once the submission is over.
func (a *app) client(interactive bool) (*formpost.Client, *status.Line, error) {
	cfg := a.cfg
	line := status.NewLine(a.stderr)

	var notifier notify.Notifier = notify.NewWriter(a.stderr, "")
	options := []formpost.Option{
		formpost.WithBaseURL(cfg.Server),
		formpost.WithLogger(a.logger),
	}
	if interactive {
		driver := a.promptDriver()
		notifier = notify.NewPrompt(driver)
		options = append(options, formpost.WithCollector(
			prompt.NewCollector(driver, prompt.WithRequiredOnly(a.flags.requiredOnly)),
		))
	}

	if a.flags.preset != "" {
		data, err := os.ReadFile(a.flags.preset)
		if err != nil {
			return nil, nil, fmt.Errorf("read preset: %w", err)
		}
		transformer, err := formpost.NewPresetTransformer(data)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, formpost.WithTransformer(transformer))
	}

	submitter := submit.New(
		submit.WithStatus(line),
		submit.WithNotifier(notify.Func(func(ctx context.Context, msg string) error {
			a.alerted = true
			return notifier.Alert(ctx, msg)
		})),
		submit.WithSaver(download.NewFileSaver(cfg.OutputDir, cfg.Overwrite, a.logger)),
		submit.WithLogger(a.logger),
		submit.WithFilename(cfg.Filename),
		submit.WithTimeout(cfg.GetTimeout()),
	)
	options = append(options, formpost.WithSubmitter(submitter))
	return formpost.New(options...), line, nil
}

func (a *app) request() (formpost.Request, error) {
	src, err := pkgopenapi.ParseSource(a.cfg.Spec)
	if err != nil {
		return formpost.Request{}, err
	}
	return formpost.Request{
		Source:         src,
		OperationID:    a.cfg.Operation,
		Values:         a.cfg.FormValues(),
		SkipValidation: a.flags.skipValidation,
	}, nil
}
