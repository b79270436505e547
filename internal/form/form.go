// =============================================================================
// Oficina Recibos - Receipt Form
// =============================================================================
//
// The form is the editing session of one receipt. It owns the receipt being
// edited and its line-item ledger, and is the only component that talks to
// the store, the renderer and the postal lookup on behalf of the user.
//
// STATES:
//
//   Blank ──edit──> Editing ──Save──> Saved ──edit──> Editing
//     ^                │ ^
//     │              Search(id)
//     │                v │
//     │              Searched ──edit──> Editing
//     │
//     └──────────── Delete (from any state)
//
// Every action either succeeds completely or returns an apperror and
// leaves the form as it was, with two exceptions taken from the shop's
// usual workflow: a search for a missing receipt clears the form, and a
// postal code the service does not know clears the address fields.
//
// =============================================================================

package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/oficina-recibos/internal/cep"
	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/idgen"
	"github.com/ginjaninja78/oficina-recibos/internal/ledger"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/internal/render"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATE
// =============================================================================

// State is the form lifecycle state.
type State int

const (
	Blank State = iota
	Editing
	Saved
	Searched
)

var stateNames = []string{"blank", "editing", "saved", "searched"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown form state %q", text)
}

// =============================================================================
// FORM
// =============================================================================

// Records is the persistence the form needs. *store.Store implements it.
type Records interface {
	NextID() string
	Find(id string) (types.Receipt, bool)
	Upsert(r types.Receipt) error
	Delete(id string) (bool, error)
}

// Form is the editing session of one receipt.
type Form struct {
	records Records
	log     logging.Logger
	now     func() time.Time

	state   State
	receipt types.Receipt
	items   *ledger.Ledger
}

// New creates a blank form. Call Reset or LoadDraft before editing.
func New(records Records, log logging.Logger) *Form {
	return &Form{
		records: records,
		log:     logging.OrNop(log),
		now:     time.Now,
		items:   ledger.New(nil),
	}
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	return f.state
}

// Number returns the receipt number being edited.
func (f *Form) Number() string {
	return f.receipt.Number
}

// Reset clears every field and item and assigns the next receipt number
// with the current date and time.
func (f *Form) Reset() {
	now := f.now()
	f.receipt = types.Receipt{
		Number:      f.records.NextID(),
		CreatedDate: now.Format(render.DateLayout),
		CreatedTime: now.Format(render.TimeLayout),
	}
	f.items.Clear()
	f.state = Blank
	f.log.Debugf("form reset to receipt %s", f.receipt.Number)
}

// Load replaces the form content with r and enters the given state.
func (f *Form) Load(r types.Receipt, state State) {
	f.receipt = cloneReceipt(r)
	f.items.Replace(r.Items)
	f.receipt.Items = nil
	f.state = state
}

// Receipt returns a snapshot of the receipt being edited, with its items
// and the total derived from them.
func (f *Form) Receipt() types.Receipt {
	r := cloneReceipt(f.receipt)
	r.Items = f.items.Items()
	r.Total = f.items.Total()
	return r
}

// =============================================================================
// FIELDS
// =============================================================================

// Set stores value in the named field after applying the field's input
// mask, and returns the stored text. Choice fields accept their options in
// any letter case.
func (f *Form) Set(name, value string) (string, error) {
	fd, ok := lookupField(name)
	if !ok {
		return "", apperror.NewValidationError("form.set", "unknown field",
			apperror.FieldError{Field: name, Message: "does not exist"})
	}
	value = strings.TrimSpace(value)
	if fd.kind == format.Choice {
		value = fd.canonical(value)
	}
	value = format.Apply(fd.kind, value)
	*fd.ptr(&f.receipt) = value
	f.edited()
	return value, nil
}

// Get returns the text of the named field.
func (f *Form) Get(name string) (string, bool) {
	fd, ok := lookupField(name)
	if !ok {
		return "", false
	}
	return *fd.ptr(&f.receipt), true
}

func (f *Form) edited() {
	f.state = Editing
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// AddItem validates and appends a line item and returns the new total.
func (f *Form) AddItem(in ledger.Input) (decimal.Decimal, error) {
	total, err := f.items.Add(in)
	if err != nil {
		return total, err
	}
	f.edited()
	return total, nil
}

// RemoveItem removes the item at index and returns the new total.
func (f *Form) RemoveItem(index int) (decimal.Decimal, error) {
	total, err := f.items.Remove(index)
	if err != nil {
		return total, err
	}
	f.edited()
	return total, nil
}

// Items returns the line items in order.
func (f *Form) Items() []types.LineItem {
	return f.items.Items()
}

// Total returns the sum of the line totals.
func (f *Form) Total() decimal.Decimal {
	return f.items.Total()
}

// =============================================================================
// STORE ACTIONS
// =============================================================================

// Search loads the stored receipt with the given number. When it does not
// exist the form is reset and a NotFound error is returned.
func (f *Form) Search(id string) error {
	id = idgen.Normalize(id)
	if id == "" {
		return apperror.NewValidationError("form.search", "enter a receipt number",
			apperror.FieldError{Field: "number", Message: "is required"})
	}
	r, ok := f.records.Find(id)
	if !ok {
		f.Reset()
		return apperror.NewNotFoundError("form.search", fmt.Sprintf("receipt %s", id))
	}
	f.Load(r, Searched)
	f.log.Infof("loaded receipt %s with %d items", r.Number, len(r.Items))
	return nil
}

// Save validates the form, applies the input masks to every field and
// inserts or updates the receipt in the store.
func (f *Form) Save() error {
	r := f.Receipt()
	for _, fd := range fields {
		p := fd.ptr(&r)
		*p = format.Apply(fd.kind, strings.TrimSpace(*p))
	}
	if err := validate("form.save", r); err != nil {
		return err
	}
	if err := f.records.Upsert(r); err != nil {
		return err
	}

	r.Items = nil
	f.receipt = r
	f.state = Saved
	f.log.Infof("saved receipt %s, total %s", r.Number, format.Money(f.items.Total()))
	return nil
}

// validate checks the fields required to store a receipt.
func validate(op string, r types.Receipt) error {
	var problems []apperror.FieldError
	if strings.TrimSpace(r.Number) == "" {
		problems = append(problems, apperror.FieldError{Field: "number", Message: "is required"})
	}
	if r.Client.Name == "" {
		problems = append(problems, apperror.FieldError{Field: "client.name", Message: "is required"})
	}
	if len(r.Items) == 0 {
		problems = append(problems, apperror.FieldError{Field: "items", Message: "add at least one item"})
	} else if !r.Total.IsPositive() {
		problems = append(problems, apperror.FieldError{Field: "total", Message: "must be greater than zero"})
	}
	for _, fd := range fields {
		if v := *fd.ptr(&r); !fd.allows(v) {
			problems = append(problems, apperror.FieldError{
				Field:   fd.name,
				Message: fmt.Sprintf("must be one of %s", strings.Join(fd.options, ", ")),
			})
		}
	}
	if len(problems) > 0 {
		return apperror.NewValidationError(op, "the receipt is incomplete", problems...)
	}
	return nil
}

// Delete removes the receipt with the given number from the store, or the
// one being edited when id is empty, and clears the form.
func (f *Form) Delete(id string) error {
	if strings.TrimSpace(id) == "" {
		id = f.receipt.Number
	}
	id = idgen.Normalize(id)
	if id == "" {
		return apperror.NewValidationError("form.delete", "enter a receipt number",
			apperror.FieldError{Field: "number", Message: "is required"})
	}
	deleted, err := f.records.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("form.delete", fmt.Sprintf("receipt %s", id))
	}
	f.log.Infof("deleted receipt %s", id)
	f.Reset()
	return nil
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document saves the receipt and renders it. It requires a receipt number,
// a client name and at least one item with a total greater than zero.
//
// PARAMETERS:
//   - renderer: The document renderer.
//   - shop: The workshop identity printed in the header.
//   - logo: Optional header image bytes.
//
// RETURNS:
//   - The rendered document.
//   - The receipt as saved.
//   - An error if validation, saving or rendering fails.
func (f *Form) Document(renderer render.Renderer, shop types.ShopInfo, logo []byte) ([]byte, types.Receipt, error) {
	r := f.Receipt()
	if err := validate("form.document", r); err != nil {
		return nil, r, err
	}
	if err := f.Save(); err != nil {
		return nil, r, err
	}

	r = f.Receipt()
	data, err := renderer.Render(render.Context{
		Receipt: r,
		Shop:    shop,
		Logo:    logo,
		Now:     f.now(),
	})
	if err != nil {
		return nil, r, apperror.NewIOError("form.document", fmt.Errorf("failed to render receipt %s: %w", r.Number, err))
	}
	return data, r, nil
}

// =============================================================================
// POSTAL LOOKUP
// =============================================================================

// FillAddress completes the client address from its postal code.
//
// An unknown or malformed code clears street, district, city and state.
// When no code was typed, or the service cannot be reached, the address is
// left untouched.
func (f *Form) FillAddress(ctx context.Context, lookup cep.Lookuper) (cep.Address, error) {
	if idgen.Digits(f.receipt.Client.PostalCode) == "" {
		return cep.Address{}, apperror.NewValidationError("form.address", "enter a postal code",
			apperror.FieldError{Field: "client.postal_code", Message: "is required"})
	}
	addr, err := lookup.Lookup(ctx, f.receipt.Client.PostalCode)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindNotFound, apperror.KindValidation:
			c := &f.receipt.Client
			c.Street, c.District, c.City, c.State = "", "", "", ""
			f.edited()
		}
		return addr, err
	}

	c := &f.receipt.Client
	c.PostalCode = format.FormatPostalCode(c.PostalCode)
	c.Street = addr.Street
	c.District = addr.District
	c.City = addr.City
	c.State = addr.State
	f.edited()
	return addr, nil
}

func cloneReceipt(r types.Receipt) types.Receipt {
	out := r
	out.Items = append([]types.LineItem(nil), r.Items...)
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
