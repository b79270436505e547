// =============================================================================
// Oficina Recibos - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Oficina Recibos CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   recibos draft new       - Start a new receipt
//   recibos item add ...    - Add a part or service
//   recibos save            - Store the receipt in the spreadsheet
//   recibos pdf             - Generate the receipt PDF
//   recibos open <numero>   - Load a stored receipt
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Receipt logic, store, renderer and application context
//   - pkg/           : Shared utilities (errors, document files)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/oficina-recibos/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
