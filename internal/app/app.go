// =============================================================================
// Oficina Recibos - Application Context
// =============================================================================
//
// The application context owns every long-lived resource of one run: the
// configuration, the logger, the receipt store, the document renderer, the
// postal lookup client and the document file manager. Commands receive it
// explicitly; nothing is kept in package-level variables.
//
// LIFECYCLE:
//   1. New loads the store (creating it when missing) and the output
//      directory, and removes the temporary documents an earlier run left
//      open in a viewer.
//   2. Commands open the form, act, and export documents through the
//      context.
//   3. Close removes the documents registered as temporary. A temporary
//      document shown in a viewer is only recorded in the pending list of
//      the output directory, since the viewer may still be reading it.
//      Failures are logged and returned, never raised as a crash.
//
// =============================================================================

package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/cep"
	"github.com/ginjaninja78/oficina-recibos/internal/config"
	"github.com/ginjaninja78/oficina-recibos/internal/form"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/internal/render"
	"github.com/ginjaninja78/oficina-recibos/internal/store"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/ginjaninja78/oficina-recibos/pkg/utils"
	"github.com/natefinch/atomic"
	"go.uber.org/multierr"
)

// PendingFile names the list, kept in the output directory, of temporary
// documents handed to a viewer and left for the next run to remove.
const PendingFile = ".temporarios"

// App is the application context.
type App struct {
	Config   *config.MainConfig
	Log      logging.Logger
	Store    *store.Store
	Renderer render.Renderer
	Postal   cep.Lookuper
	Files    *utils.FileManager

	// temp lists generated documents removed by Close.
	temp []string

	// pending lists temporary documents shown in a viewer during this run.
	pending []string

	// open shows a generated document to the user.
	open func(path string) error
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// New creates the application context.
//
// PARAMETERS:
//   - cfg: The loaded configuration.
//   - log: The logger shared by every module.
//
// RETURNS:
//   - The application context.
//   - An error if the store cannot be opened or the output directory
//     cannot be created.
func New(cfg *config.MainConfig, log logging.Logger) (*App, error) {
	log = logging.OrNop(log)

	files := utils.NewFileManager(cfg.OutputDir, cfg.OutputNameFormat)
	if err := files.EnsureDirectories(); err != nil {
		return nil, apperror.NewIOError("app.init", err)
	}

	s, err := store.Open(cfg.StoreFile, log)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %d receipts from %s", s.Len(), s.Path())

	a := &App{
		Config:   cfg,
		Log:      log,
		Store:    s,
		Renderer: render.NewPDF(log),
		Postal:   cep.NewClient(cfg.PostalLookup.BaseURL, cfg.PostalLookup.Timeout, log),
		Files:    files,
		open:     utils.OpenWithDefaultViewer,
	}
	a.sweepPending()
	return a, nil
}

// Close removes the temporary documents of this run and records the ones
// still shown in a viewer. The returned error combines every failure;
// callers only log it.
func (a *App) Close() error {
	err := utils.RemoveFiles(a.temp)
	if err != nil {
		a.Log.Errorf("failed to remove temporary documents: %v", err)
	} else if len(a.temp) > 0 {
		a.Log.Debugf("removed %d temporary documents", len(a.temp))
	}
	a.temp = nil

	if len(a.pending) > 0 {
		previous, readErr := a.readPending()
		if readErr != nil {
			a.Log.Errorf("failed to read the pending document list: %v", readErr)
		}
		if writeErr := a.writePending(append(previous, a.pending...)); writeErr != nil {
			a.Log.Errorf("failed to record documents left open: %v", writeErr)
			readErr = multierr.Append(readErr, writeErr)
		} else {
			a.Log.Debugf("left %d documents open for the next run to remove", len(a.pending))
		}
		err = multierr.Append(err, readErr)
		a.pending = nil
	}
	return err
}

// TrackTemp registers a file for removal by Close.
func (a *App) TrackTemp(path string) {
	a.temp = append(a.temp, path)
}

// sweepPending removes the documents earlier runs left open. Paths that
// cannot be removed yet stay listed.
func (a *App) sweepPending() {
	paths, err := a.readPending()
	if err != nil {
		a.Log.Warnf("failed to read the pending document list: %v", err)
		return
	}
	if len(paths) == 0 {
		return
	}

	if err := utils.RemoveFiles(paths); err != nil {
		a.Log.Warnf("failed to remove documents left by an earlier run: %v", err)
	}
	var remaining []string
	for _, p := range paths {
		if utils.FileExists(p) {
			remaining = append(remaining, p)
		}
	}
	if err := a.writePending(remaining); err != nil {
		a.Log.Warnf("failed to update the pending document list: %v", err)
		return
	}
	a.Log.Debugf("removed %d documents left by an earlier run", len(paths)-len(remaining))
}

func (a *App) pendingPath() string {
	return filepath.Join(a.Config.OutputDir, PendingFile)
}

// readPending returns the listed paths, one per line. A missing list is
// empty.
func (a *App) readPending() ([]string, error) {
	data, err := os.ReadFile(a.pendingPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// writePending replaces the list with paths, removing it when empty.
func (a *App) writePending(paths []string) error {
	if len(paths) == 0 {
		return utils.RemoveFiles([]string{a.pendingPath()})
	}
	return atomic.WriteFile(a.pendingPath(), strings.NewReader(strings.Join(paths, "\n")+"\n"))
}

// =============================================================================
// FORM SESSION
// =============================================================================

// OpenForm restores the editing session from the draft file, or starts a
// new receipt when there is none.
func (a *App) OpenForm() (*form.Form, error) {
	f := form.New(a.Store, a.Log)
	if err := f.LoadDraft(a.Config.DraftFile); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveForm writes the editing session to the draft file.
func (a *App) SaveForm(f *form.Form) error {
	return f.SaveDraft(a.Config.DraftFile)
}

// =============================================================================
// DOCUMENT EXPORT
// =============================================================================

// ExportDocument saves and renders the receipt being edited, writes it under
// a unique name in the output directory and shows it to the user when the
// configuration asks for it.
//
// RETURNS:
//   - The path of the generated document.
//   - An error if validation, saving, rendering or writing fails. Failing to
//     open the viewer is only logged.
func (a *App) ExportDocument(f *form.Form) (string, error) {
	data, r, err := f.Document(a.Renderer, a.Config.Shop, a.logo())
	if err != nil {
		return "", err
	}

	path, err := a.Files.WriteDocument(data, r.Number)
	if err != nil {
		return "", apperror.NewIOError("app.export", err)
	}
	a.Log.Infof("generated %s for receipt %s", path, r.Number)

	opened := false
	if a.Config.Open() {
		if err := a.open(path); err != nil {
			a.Log.Warnf("could not open %s: %v", path, err)
		} else {
			opened = true
		}
	}
	if !a.Config.Keep() {
		if opened {
			a.pending = append(a.pending, path)
		} else {
			a.TrackTemp(path)
		}
	}
	return path, nil
}

// logo reads the configured header image. A missing or unreadable file
// only produces a warning.
func (a *App) logo() []byte {
	if a.Config.LogoFile == "" {
		return nil
	}
	data, err := os.ReadFile(a.Config.LogoFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		a.Log.Warnf("logo %s not found, generating without it", a.Config.LogoFile)
		return nil
	case err != nil:
		a.Log.Warnf("%v", fmt.Errorf("failed to read logo %s: %w", a.Config.LogoFile, err))
		return nil
	}
	return data
}
