// =============================================================================
// Oficina Recibos - Item Commands
// =============================================================================
//
// COMMAND USAGE:
//   recibos item add --category peça --code F-01 --description "Filtro" \
//                    --price 25,90 --qty 2 [--discount 10]
//   recibos item remove <posição>          # positions start at 1
//   recibos item list
//
// =============================================================================

package cmd

import (
	"strconv"

	"github.com/ginjaninja78/oficina-recibos/internal/app"
	"github.com/ginjaninja78/oficina-recibos/internal/form"
	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/ledger"
	"github.com/ginjaninja78/oficina-recibos/internal/notify"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/spf13/cobra"
)

// itemInput collects the flags of 'item add'.
var itemInput ledger.Input

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage the parts and services of the receipt being edited",
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a part or service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			total, err := f.AddItem(itemInput)
			if err != nil {
				return err
			}
			if err := a.SaveForm(f); err != nil {
				return err
			}
			n.Infof("item adicionado, total R$ %s", format.Money(total))
			return nil
		})
	},
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove <posição>",
	Short: "Remove the item at a position (starting at 1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return apperror.NewValidationError("item.remove", "invalid position",
					apperror.FieldError{Field: "position", Message: "must be a whole number"})
			}
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			total, err := f.RemoveItem(pos - 1)
			if err != nil {
				return err
			}
			if err := a.SaveForm(f); err != nil {
				return err
			}
			n.Infof("item %d removido, total R$ %s", pos, format.Money(total))
			return nil
		})
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the items of the receipt being edited",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			printItems(cmd, f)
			return nil
		})
	},
}

// printItems prints the item table and total of the form.
func printItems(cmd *cobra.Command, f *form.Form) {
	items := f.Items()
	if len(items) == 0 {
		printf(cmd, "Nenhum item.\n")
		return
	}
	printf(cmd, "%3s  %-8s %-10s %-30s %5s %12s %7s %12s\n",
		"#", "Tipo", "Código", "Descrição", "Qtd", "Valor Unit", "Desc%", "Total")
	for i, it := range items {
		if it.IsRaw() {
			printf(cmd, "%3d  %s\n", i+1, it.Raw)
			continue
		}
		printf(cmd, "%3d  %-8s %-10s %-30s %5d %12s %7s %12s\n",
			i+1, it.Category, it.Code, it.Description, it.Quantity,
			format.Money(it.UnitPrice), it.DiscountPercent.String(), format.Money(it.LineTotal))
	}
	printf(cmd, "Total: R$ %s\n", format.Money(f.Total()))
}

func init() {
	flags := itemAddCmd.Flags()
	flags.StringVar(&itemInput.Category, "category", "", "Peça or Serviço")
	flags.StringVar(&itemInput.Code, "code", "", "Part or service code")
	flags.StringVar(&itemInput.Description, "description", "", "Description")
	flags.StringVar(&itemInput.UnitPrice, "price", "", "Unit price, e.g. 25,90")
	flags.StringVar(&itemInput.Quantity, "qty", "1", "Quantity")
	flags.StringVar(&itemInput.DiscountPercent, "discount", "", "Discount in percent")

	itemCmd.AddCommand(itemAddCmd, itemRemoveCmd, itemListCmd)
	rootCmd.AddCommand(itemCmd)
}
