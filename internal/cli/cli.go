package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/vk/taskbridge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

type globalFlags struct {
	logFormat string
	logLevel  string
}

// NewRootCmd builds the taskbridge command tree. Build output goes to outW,
// logs to errW. fsys is the filesystem scripts and tasks operate on; nil
// means the OS filesystem.
func NewRootCmd(outW, errW io.Writer, fsys afero.Fs) *cobra.Command {
	var global globalFlags

	root := &cobra.Command{
		Use:           "taskbridge",
		Short:         "Run HCL build scripts against a task engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().StringVar(&global.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().StringVar(&global.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(
		runCmd(&global, outW, errW, fsys),
		tasksCmd(&global, outW, errW),
	)
	return root
}

func runCmd(global *globalFlags, outW, errW io.Writer, fsys afero.Fs) *cobra.Command {
	var (
		baseDir      string
		defines      []string
		messageLevel string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "run [SCRIPT...]",
		Short: "Run build scripts",
		Long: `Run the statements of the given .hcl files or directories in order.
Without arguments, build.hcl in the base directory is run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseDefines(defines)
			if err != nil {
				return usageError(err)
			}
			cfg, err := app.NewConfig(app.Config{
				Files:        args,
				BaseDir:      baseDir,
				Defines:      props,
				LogFormat:    global.logFormat,
				LogLevel:     global.logLevel,
				MessageLevel: messageLevel,
				Strict:       strict,
				Fs:           fsys,
				LogOutput:    errW,
			})
			if err != nil {
				return usageError(err)
			}

			if err := app.NewApp(outW, cfg).Run(cmd.Context()); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseDir, "basedir", ".", "Base directory relative file attributes resolve against.")
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Set a property, as name=value. Repeatable.")
	cmd.Flags().StringVar(&messageLevel, "message-level", "info", "Least severe echo level printed. Options: 'debug', 'info', 'warning', 'error'.")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on task attributes the task does not support.")
	return cmd
}

func tasksCmd(global *globalFlags, outW, errW io.Writer) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the built-in tasks and data types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.NewConfig(app.Config{
				LogFormat: global.logFormat,
				LogLevel:  global.logLevel,
				LogOutput: errW,
			})
			if err != nil {
				return usageError(err)
			}
			a := app.NewApp(outW, cfg)
			if !verbose {
				tasks, types := a.TaskNames()
				printList(outW, "Tasks:", tasks)
				printList(outW, "Data types:", types)
				return nil
			}

			tasks, types, typeNames, err := a.Describe()
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			printDocs(outW, "Tasks:", tasks)
			printDocs(outW, "Data types:", types)
			printList(outW, "Type names:", typeNames)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also list attributes and every resolvable type name.")
	return cmd
}

func printList(w io.Writer, title string, names []string) {
	fmt.Fprintln(w, title)
	for _, name := range names {
		fmt.Fprintln(w, "  "+name)
	}
}

func printDocs(w io.Writer, title string, docs []app.TaskDoc) {
	fmt.Fprintln(w, title)
	for _, d := range docs {
		fmt.Fprintf(w, "  %s: %s\n", d.Name, strings.Join(d.Attributes, ", "))
	}
}

// parseDefines turns name=value pairs into a property map.
func parseDefines(defs []string) (map[string]string, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	props := make(map[string]string, len(defs))
	for _, def := range defs {
		name, value, ok := strings.Cut(def, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid define %q: expected name=value", def)
		}
		props[name] = value
	}
	return props, nil
}
