// =============================================================================
// Oficina Recibos - Format Command
// =============================================================================
//
// COMMAND USAGE:
//   recibos format <tipo> <texto>
//
// Applies one input mask and prints the result. Kinds: text, choice,
// currency, phone, taxid, odometer, cep.
//
// EXAMPLE:
//   recibos format phone 21997570103   ->  (21) 99757-0103
//
// =============================================================================

package cmd

import (
	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format <tipo> <texto>",
	Short: "Apply an input mask to a text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := format.ParseKind(args[0])
		if !ok {
			return apperror.NewValidationError("format", "unknown field kind",
				apperror.FieldError{Field: args[0], Message: "use text, currency, phone, taxid, odometer or cep"})
		}
		printf(cmd, "%s\n", format.Apply(kind, args[1]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
