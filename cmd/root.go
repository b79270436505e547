// =============================================================================
// Oficina Recibos - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (recibos)
//   ├── draftCmd   (recibos draft new|show|set|fields)
//   ├── itemCmd    (recibos item add|remove|list)
//   ├── saveCmd    (recibos save)
//   ├── openCmd    (recibos open <numero>)
//   ├── deleteCmd  (recibos delete [numero])
//   ├── pdfCmd     (recibos pdf)
//   ├── cepCmd     (recibos cep [cep])
//   ├── listCmd    (recibos list)
//   ├── nextIDCmd  (recibos nextid)
//   ├── formatCmd  (recibos format <tipo> <texto>)
//   └── versionCmd (recibos version)
//
// ACTION BOUNDARY:
//   Commands that touch receipts run through runAction, which loads the
//   configuration, builds the logger and the application context, runs the
//   action and reports its outcome through the notifier. An action failure
//   never panics: it becomes a message and a non-zero exit status.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/ginjaninja78/oficina-recibos/internal/app"
	"github.com/ginjaninja78/oficina-recibos/internal/config"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/internal/notify"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// noColor disables colored messages.
var noColor bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recibos",
	Short: "Oficina Recibos - receipts for an auto-repair shop",
	Long: `Oficina Recibos records the client, vehicle, parts and services of each
service order in a spreadsheet and prints the receipt as a PDF.

The receipt being edited is kept in a draft file between commands, so a
receipt is usually built in a few steps:

Example Usage:
  recibos draft new
  recibos draft set client.name="Maria Souza" client.phone=21997570103
  recibos cep 21540500
  recibos item add --category peça --code F-01 --description "Filtro de óleo" --price 25,90 --qty 1
  recibos save
  recibos pdf
  recibos open 42`,

	SilenceErrors: true,
	SilenceUsage:  true,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			newNotifier(rootCmd.ErrOrStderr()).Error(err)
		}
		os.Exit(1)
	}
}

// reportedError marks an error the notifier has already shown.
type reportedError struct {
	err error
}

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

func newNotifier(w io.Writer) *notify.Notifier {
	return notify.New(w, !noColor && !color.NoColor)
}

// =============================================================================
// ACTION BOUNDARY
// =============================================================================

// runAction runs one user action inside a fully initialized application
// context and reports its failure to the user.
//
// PARAMETERS:
//   - cmd: The running command; messages go to its error stream.
//   - action: The action to run.
//
// RETURNS:
//   - nil on success, or a reportedError wrapping the action's error.
func runAction(cmd *cobra.Command, action func(a *app.App, n *notify.Notifier) error) (err error) {
	n := newNotifier(cmd.ErrOrStderr())
	defer func() {
		if r := recover(); r != nil {
			err = apperror.Newf(apperror.KindInternal, cmd.Name(), "unexpected failure: %v", r)
		}
		if err != nil {
			n.Error(err)
			err = reportedError{err: err}
		}
	}()

	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return apperror.NewIOError("config", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Level: level, File: cfg.LogFile})
	if err != nil {
		return apperror.NewIOError("logging", err)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return action(a, n)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
	rootCmd.PersistentFlags().BoolVar(
		&noColor,
		"no-color",
		false,
		"Disable colored messages",
	)
}

// printf writes command output, ignoring write errors on the terminal.
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
