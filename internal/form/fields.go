package form

import (
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
)

// field describes one editable receipt field. Formatting is chosen by kind,
// never by looking at the value.
type field struct {
	name    string
	kind    format.FieldKind
	ptr     func(r *types.Receipt) *string
	options []string
}

var fields = []field{
	{name: "client.name", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.Name }},
	{name: "client.phone", kind: format.Phone, ptr: func(r *types.Receipt) *string { return &r.Client.Phone }},
	{name: "client.tax_id", kind: format.TaxID, ptr: func(r *types.Receipt) *string { return &r.Client.TaxID }},
	{name: "client.email", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.Email }},
	{name: "client.postal_code", kind: format.PostalCode, ptr: func(r *types.Receipt) *string { return &r.Client.PostalCode }},
	{name: "client.street", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.Street }},
	{name: "client.number", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.Number }},
	{name: "client.district", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.District }},
	{name: "client.city", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.City }},
	{name: "client.state", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Client.State }},

	{name: "vehicle.plate", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Vehicle.Plate }},
	{name: "vehicle.brand", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Vehicle.Brand }},
	{name: "vehicle.model", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Vehicle.Model }},
	{name: "vehicle.color", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Vehicle.Color }},
	{name: "vehicle.year", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Vehicle.Year }},
	{name: "vehicle.odometer_in", kind: format.Odometer, ptr: func(r *types.Receipt) *string { return &r.Vehicle.OdometerIn }},
	{name: "vehicle.odometer_out", kind: format.Odometer, ptr: func(r *types.Receipt) *string { return &r.Vehicle.OdometerOut }},
	{name: "vehicle.fuel", kind: format.Choice, options: names(types.FuelTypes),
		ptr: func(r *types.Receipt) *string { return (*string)(&r.Vehicle.Fuel) }},
	{name: "vehicle.bay", kind: format.Choice, options: names(types.Bays),
		ptr: func(r *types.Receipt) *string { return (*string)(&r.Vehicle.Bay) }},

	{name: "responsible", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.ResponsibleParty }},
	{name: "status", kind: format.Choice, options: names(types.Statuses),
		ptr: func(r *types.Receipt) *string { return (*string)(&r.Status) }},
	{name: "payment", kind: format.Choice, options: names(types.PaymentOptions),
		ptr: func(r *types.Receipt) *string { return (*string)(&r.PaymentTerms) }},
	{name: "notes", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.Notes }},
	{name: "next_review", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.NextReviewNote }},
	{name: "problem_reported", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.ProblemReported }},
	{name: "problem_found", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.ProblemFound }},
	{name: "work_performed", kind: format.Text, ptr: func(r *types.Receipt) *string { return &r.WorkPerformed }},
}

func names[T ~string](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}

func lookupField(name string) (field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

// canonical returns the option equal to value ignoring case, or value
// unchanged when none matches.
func (f field) canonical(value string) string {
	for _, o := range f.options {
		if strings.EqualFold(o, value) {
			return o
		}
	}
	return value
}

func (f field) allows(value string) bool {
	if value == "" || f.kind != format.Choice {
		return true
	}
	for _, o := range f.options {
		if o == value {
			return true
		}
	}
	return false
}

// FieldInfo describes an editable field for listings.
type FieldInfo struct {
	Name    string
	Kind    format.FieldKind
	Options []string
}

// Fields lists the editable fields in form order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(fields))
	for i, f := range fields {
		out[i] = FieldInfo{Name: f.name, Kind: f.kind, Options: f.options}
	}
	return out
}
