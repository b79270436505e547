// =============================================================================
// Oficina Recibos - File Manager Utility
// =============================================================================
//
// This module provides the file handling around generated documents:
//   - Directory management
//   - Unique document naming
//   - Atomic document writes
//   - Removal of temporary documents
//   - Opening a document with the platform viewer
//
// NAMING:
//   Documents are named from a format string such as
//   "recibo_{receipt}_{uuid}.pdf". The {uuid} placeholder keeps repeated
//   exports of the same receipt from overwriting each other.
//
// =============================================================================

package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"go.uber.org/multierr"
)

// DocumentExtension is appended to generated names that lack it.
const DocumentExtension = ".pdf"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles document files for the application.
type FileManager struct {
	// OutputDir is the directory where documents are written.
	OutputDir string

	// NameFormat is the document file name format.
	// See GenerateOutputFileName for the placeholders.
	NameFormat string
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir, nameFormat string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		NameFormat: nameFormat,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// DOCUMENT OUTPUT
// =============================================================================

// WriteDocument writes a rendered document under a newly generated name.
//
// PARAMETERS:
//   - data: The document bytes.
//   - receipt: The receipt number, used for the {receipt} placeholder.
//
// RETURNS:
//   - The path of the written file.
//   - An error if writing fails.
func (fm *FileManager) WriteDocument(data []byte, receipt string) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	name := GenerateOutputFileName(fm.NameFormat, map[string]string{
		"receipt": SafeName(receipt),
	})
	path := filepath.Join(fm.OutputDir, name)

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return path, nil
}

// RemoveFiles removes every file in paths. Files that are already gone are
// not an error; every other failure is collected and returned together.
func RemoveFiles(paths []string) error {
	var err error
	for _, p := range paths {
		if rmErr := os.Remove(p); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = multierr.Append(err, fmt.Errorf("failed to remove %s: %w", p, rmErr))
		}
	}
	return err
}

// OpenWithDefaultViewer opens path with the program the desktop associates
// with its type. It returns once the viewer has been started.
func OpenWithDefaultViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	// The viewer outlives this call; reap it in the background.
	go cmd.Wait()
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {receipt}   - Receipt number (from params)
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in .pdf.
//
// EXAMPLE:
//   format: "recibo_{receipt}_{uuid}.pdf"
//   params: {"receipt": "000042"}
//   output: "recibo_000042_a1b2c3d4-e5f6-7890-abcd-ef1234567890.pdf"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	// Build replacements.
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	// Add custom params.
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	// Apply replacements.
	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Ensure .pdf extension.
	if !strings.HasSuffix(strings.ToLower(result), DocumentExtension) {
		result += DocumentExtension
	}

	return result
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// SafeName keeps only letters, digits and underscores of s, so that a
// receipt number typed by hand cannot escape the output directory.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
