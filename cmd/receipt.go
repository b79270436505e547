// =============================================================================
// Oficina Recibos - Receipt Commands
// =============================================================================
//
// COMMAND USAGE:
//   recibos save                 # store the receipt being edited
//   recibos open <numero>        # load a stored receipt into the draft
//   recibos delete [numero] [-y] # delete a receipt (default: the draft's)
//   recibos pdf                  # save and print the receipt as PDF
//   recibos list                 # list stored receipts
//   recibos nextid               # show the next receipt number
//
// =============================================================================

package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/app"
	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/idgen"
	"github.com/ginjaninja78/oficina-recibos/internal/notify"
	"github.com/spf13/cobra"
)

// assumeYes skips the delete confirmation.
var assumeYes bool

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store the receipt being edited",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			if err := f.Save(); err != nil {
				return err
			}
			if err := a.SaveForm(f); err != nil {
				return err
			}
			n.Infof("recibo %s salvo com sucesso", f.Number())
			return nil
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open <numero>",
	Short: "Load a stored receipt for editing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			searchErr := f.Search(args[0])
			// A failed search clears the form; keep the draft in step.
			if err := a.SaveForm(f); err != nil {
				return err
			}
			if searchErr != nil {
				return searchErr
			}
			r := f.Receipt()
			n.Infof("recibo %s de %s carregado, total R$ %s", r.Number, r.Client.Name, format.Money(r.Total))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [numero]",
	Short: "Delete a stored receipt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			id := f.Number()
			if len(args) == 1 {
				id = idgen.Normalize(args[0])
			}
			if !assumeYes && !confirm(cmd, fmt.Sprintf("Excluir o recibo %s? [s/N] ", id)) {
				n.Infof("exclusão cancelada")
				return nil
			}
			if err := f.Delete(id); err != nil {
				return err
			}
			if err := a.SaveForm(f); err != nil {
				return err
			}
			n.Infof("recibo %s excluído", id)
			return nil
		})
	},
}

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Save the receipt being edited and generate its PDF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			path, err := a.ExportDocument(f)
			if err != nil {
				return err
			}
			if err := a.SaveForm(f); err != nil {
				return err
			}
			n.Infof("PDF gerado: %s", path)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored receipts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			receipts := a.Store.All()
			if len(receipts) == 0 {
				printf(cmd, "Nenhum recibo salvo.\n")
				return nil
			}
			printf(cmd, "%-8s %-10s %-28s %-9s %-16s %12s\n", "Número", "Data", "Cliente", "Placa", "Situação", "Total")
			for _, r := range receipts {
				printf(cmd, "%-8s %-10s %-28s %-9s %-16s %12s\n",
					r.Number, r.CreatedDate, r.Client.Name, r.Vehicle.Plate, r.Status, format.Money(r.Total))
			}
			return nil
		})
	},
}

var nextIDCmd = &cobra.Command{
	Use:   "nextid",
	Short: "Show the next receipt number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			printf(cmd, "%s\n", a.Store.NextID())
			return nil
		})
	},
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	printf(cmd, "%s", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func init() {
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")
	rootCmd.AddCommand(saveCmd, openCmd, deleteCmd, pdfCmd, listCmd, nextIDCmd)
}
