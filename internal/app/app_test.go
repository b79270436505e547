package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/oficina-recibos/internal/config"
	"github.com/ginjaninja78/oficina-recibos/internal/ledger"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newApp(t *testing.T, keep, open bool) (*App, *observer.ObservedLogs, *[]string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.MainConfig{
		StoreFile:        filepath.Join(dir, "dados", "recibos.xlsx"),
		OutputDir:        filepath.Join(dir, "out"),
		DraftFile:        filepath.Join(dir, "dados", "rascunho.yaml"),
		LogoFile:         filepath.Join(dir, "missing-logo.png"),
		OutputNameFormat: "recibo_{receipt}_{uuid}.pdf",
		KeepDocuments:    &keep,
		OpenDocuments:    &open,
		Shop:             config.DefaultShop,
	}
	core, logs := observer.New(zap.DebugLevel)
	a, err := New(cfg, zap.New(core).Sugar())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	var opened []string
	a.open = func(path string) error {
		opened = append(opened, path)
		return nil
	}
	return a, logs, &opened
}

func fillForm(t *testing.T, a *App) {
	t.Helper()
	f, err := a.OpenForm()
	if err != nil {
		t.Fatal(err)
	}
	f.Set("client.name", "Maria")
	if _, err := f.AddItem(ledger.Input{Category: "Peça", Code: "F-1", Description: "Filtro", UnitPrice: "25,90", Quantity: "2"}); err != nil {
		t.Fatal(err)
	}
	if err := a.SaveForm(f); err != nil {
		t.Fatalf("SaveForm returned error: %v", err)
	}
}

func TestNewCreatesStore(t *testing.T) {
	a, _, _ := newApp(t, true, false)
	if _, err := os.Stat(a.Config.StoreFile); err != nil {
		t.Errorf("store file was not created: %v", err)
	}
	if _, err := os.Stat(a.Config.OutputDir); err != nil {
		t.Errorf("output directory was not created: %v", err)
	}
}

func TestExportDocument(t *testing.T) {
	a, logs, opened := newApp(t, true, true)
	fillForm(t, a)

	f, err := a.OpenForm()
	if err != nil {
		t.Fatal(err)
	}
	path, err := a.ExportDocument(f)
	if err != nil {
		t.Fatalf("ExportDocument returned error: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), "recibo_000001_") || filepath.Dir(path) != a.Config.OutputDir {
		t.Errorf("unexpected document path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("document %s is not a PDF: %v", path, err)
	}
	if _, ok := a.Store.Find("000001"); !ok {
		t.Error("exporting did not save the receipt")
	}
	if len(*opened) != 1 || (*opened)[0] != path {
		t.Errorf("opened %v, want [%s]", *opened, path)
	}
	if n := logs.FilterMessageSnippet("logo").Len(); n != 1 {
		t.Errorf("got %d logo warnings, want 1", n)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("kept document was removed: %v", err)
	}
}

func TestTemporaryDocumentsRemovedOnClose(t *testing.T) {
	a, _, opened := newApp(t, false, false)
	fillForm(t, a)

	f, _ := a.OpenForm()
	path, err := a.ExportDocument(f)
	if err != nil {
		t.Fatalf("ExportDocument returned error: %v", err)
	}
	if len(*opened) != 0 {
		t.Errorf("document was opened with open_documents off")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document missing before Close: %v", err)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary document still exists: %v", err)
	}
}

func TestOpenedTemporaryDocumentsRemovedByNextRun(t *testing.T) {
	a, _, opened := newApp(t, false, true)
	fillForm(t, a)

	f, _ := a.OpenForm()
	path, err := a.ExportDocument(f)
	if err != nil {
		t.Fatalf("ExportDocument returned error: %v", err)
	}
	if len(*opened) != 1 {
		t.Fatalf("opened %v, want the document", *opened)
	}

	// The viewer may still be reading the document when the run ends.
	if err := a.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document shown in the viewer was removed at Close: %v", err)
	}
	pending, err := os.ReadFile(filepath.Join(a.Config.OutputDir, PendingFile))
	if err != nil || strings.TrimSpace(string(pending)) != path {
		t.Errorf("pending list = %q, %v, want %s", pending, err, path)
	}

	next, err := New(a.Config, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("document left by the earlier run still exists: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Config.OutputDir, PendingFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("pending list still exists after the sweep: %v", err)
	}
	if err := next.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestFailedViewerFallsBackToClose(t *testing.T) {
	a, _, _ := newApp(t, false, true)
	a.open = func(string) error { return errors.New("no viewer") }
	fillForm(t, a)

	f, _ := a.OpenForm()
	path, err := a.ExportDocument(f)
	if err != nil {
		t.Fatalf("ExportDocument returned error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("document never shown still exists: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Config.OutputDir, PendingFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("pending list written for a document never shown: %v", err)
	}
}

func TestCloseReportsFailures(t *testing.T) {
	a, logs, _ := newApp(t, false, false)
	busy := filepath.Join(t.TempDir(), "busy")
	if err := os.MkdirAll(filepath.Join(busy, "child"), 0755); err != nil {
		t.Fatal(err)
	}
	a.TrackTemp(busy)
	a.TrackTemp(filepath.Join(t.TempDir(), "already-gone.pdf"))

	if err := a.Close(); err == nil {
		t.Error("Close succeeded, want error for the non-empty directory")
	}
	if logs.FilterLevelExact(zap.ErrorLevel).Len() != 1 {
		t.Errorf("failure was not logged: %v", logs.All())
	}
}

func TestExportDocumentValidation(t *testing.T) {
	a, _, opened := newApp(t, true, true)
	f, err := a.OpenForm()
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.ExportDocument(f)
	if !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("ExportDocument on an empty form error = %v, want validation error", err)
	}
	entries, _ := os.ReadDir(a.Config.OutputDir)
	if len(entries) != 0 || len(*opened) != 0 || a.Store.Len() != 0 {
		t.Errorf("failed export left %d documents, %d opened, %d receipts", len(entries), len(*opened), a.Store.Len())
	}
}
