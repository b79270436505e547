package form

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// draft is the YAML form of an editing session. It lets the session span
// several command invocations.
type draft struct {
	State   State             `yaml:"state"`
	Receipt types.Receipt     `yaml:"receipt"`
	Extra   map[string]string `yaml:"extra,omitempty"`
}

// SaveDraft writes the editing session to path, replacing it atomically.
func (f *Form) SaveDraft(path string) error {
	r := f.Receipt()
	d := draft{State: f.state, Receipt: r, Extra: r.Extra}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return apperror.NewIOError("form.draft", fmt.Errorf("failed to encode draft: %w", err))
	}
	if err := enc.Close(); err != nil {
		return apperror.NewIOError("form.draft", fmt.Errorf("failed to encode draft: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperror.NewIOError("form.draft", fmt.Errorf("failed to create directory: %w", err))
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return apperror.NewIOError("form.draft", fmt.Errorf("failed to write draft %s: %w", path, err))
	}
	return nil
}

// LoadDraft restores the editing session saved at path. When no draft
// exists the form is reset instead.
func (f *Form) LoadDraft(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		f.Reset()
		return nil
	}
	if err != nil {
		return apperror.NewIOError("form.draft", fmt.Errorf("failed to read draft %s: %w", path, err))
	}

	var d draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return apperror.NewIOError("form.draft", fmt.Errorf("failed to parse draft %s: %w", path, err))
	}
	d.Receipt.Extra = d.Extra
	f.Load(d.Receipt, d.State)
	if f.receipt.Number == "" {
		f.receipt.Number = f.records.NextID()
	}
	return nil
}
