// =============================================================================
// Oficina Recibos - Draft Commands
// =============================================================================
//
// The draft is the receipt being edited. It is kept in the draft file
// (config key draft_file) so that it can be built over several commands.
//
// COMMAND USAGE:
//   recibos draft new                      # start a new receipt
//   recibos draft show                     # print the receipt being edited
//   recibos draft set campo=valor ...      # edit fields
//   recibos draft fields                   # list the editable fields
//
// Field values go through the same input masks as the desktop form:
// "client.phone=21997570103" is stored as "(21) 99757-0103".
//
// =============================================================================

package cmd

import (
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/app"
	"github.com/ginjaninja78/oficina-recibos/internal/form"
	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/notify"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the receipt being prepared",
}

var draftNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Discard the draft and start a new receipt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f := form.New(a.Store, a.Log)
			f.Reset()
			if err := a.SaveForm(f); err != nil {
				return err
			}
			n.Infof("novo recibo %s", f.Number())
			return nil
		})
	},
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the receipt being edited",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			r := f.Receipt()
			printf(cmd, "Recibo %s (%s)  %s %s\n", r.Number, f.State(), r.CreatedDate, r.CreatedTime)
			for _, fi := range form.Fields() {
				if v, _ := f.Get(fi.Name); v != "" {
					printf(cmd, "  %-22s %s\n", fi.Name, v)
				}
			}
			printItems(cmd, f)
			return nil
		})
	},
}

var draftSetCmd = &cobra.Command{
	Use:   "set campo=valor...",
	Short: "Set fields of the receipt being edited",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			for _, arg := range args {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return apperror.NewValidationError("draft.set", "expected campo=valor",
						apperror.FieldError{Field: arg, Message: "missing '='"})
				}
				stored, err := f.Set(name, value)
				if err != nil {
					return err
				}
				printf(cmd, "%s = %s\n", name, stored)
			}
			return a.SaveForm(f)
		})
	},
}

var draftFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the editable fields",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, fi := range form.Fields() {
			line := fi.Name
			if fi.Kind != format.Text {
				line += " (" + fi.Kind.String() + ")"
			}
			if len(fi.Options) > 0 {
				line += ": " + strings.Join(fi.Options, " | ")
			}
			printf(cmd, "%s\n", line)
		}
	},
}

func init() {
	draftCmd.AddCommand(draftNewCmd, draftShowCmd, draftSetCmd, draftFieldsCmd)
	rootCmd.AddCommand(draftCmd)
}
