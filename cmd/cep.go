// =============================================================================
// Oficina Recibos - Postal Code Command
// =============================================================================
//
// COMMAND USAGE:
//   recibos cep [cep]
//
// Completes the client address of the draft from its postal code, or from
// the code given on the command line. An unknown code clears the address;
// when the service is unreachable the address is kept as it was. Either way
// the code given on the command line is kept in the draft.
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/oficina-recibos/internal/app"
	"github.com/ginjaninja78/oficina-recibos/internal/notify"
	"github.com/spf13/cobra"
)

var cepCmd = &cobra.Command{
	Use:   "cep [cep]",
	Short: "Fill the client address from the postal code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, func(a *app.App, n *notify.Notifier) error {
			f, err := a.OpenForm()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if _, err := f.Set("client.postal_code", args[0]); err != nil {
					return err
				}
			}

			// The typed code is kept in the draft whatever the lookup says.
			addr, lookupErr := f.FillAddress(cmd.Context(), a.Postal)
			if err := a.SaveForm(f); err != nil {
				return err
			}
			if lookupErr != nil {
				return lookupErr
			}
			n.Infof("endereço: %s, %s, %s - %s", addr.Street, addr.District, addr.City, addr.State)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cepCmd)
}
