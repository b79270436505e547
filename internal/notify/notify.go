// =============================================================================
// Oficina Recibos - User Notifications
// =============================================================================
//
// Every user action ends here. Its outcome becomes a message with a
// severity, printed in the severity's color:
//
//   | Severity    | Used for                               | Color  |
//   |-------------|----------------------------------------|--------|
//   | Information | successful actions                     | green  |
//   | Warning     | validation, not found and connectivity | yellow |
//   | Critical    | storage and unexpected failures        | red    |
//
// =============================================================================

package notify

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
)

// Severity ranks a message.
type Severity int

const (
	Information Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "Aviso"
	case Critical:
		return "Erro"
	default:
		return "Informação"
	}
}

// SeverityOf maps an error to the severity it is shown with.
func SeverityOf(err error) Severity {
	if err == nil {
		return Information
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindNotFound, apperror.KindConnectivity:
		return Warning
	default:
		return Critical
	}
}

// Notifier prints messages for the user.
type Notifier struct {
	w      io.Writer
	colors map[Severity]*color.Color
}

// New creates a notifier writing to w. Colors are used only when
// enableColor is set.
func New(w io.Writer, enableColor bool) *Notifier {
	colors := map[Severity]*color.Color{
		Information: color.New(color.FgGreen),
		Warning:     color.New(color.FgYellow),
		Critical:    color.New(color.FgRed, color.Bold),
	}
	for _, c := range colors {
		if enableColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &Notifier{w: w, colors: colors}
}

// Infof prints an information message.
func (n *Notifier) Infof(format string, args ...interface{}) {
	n.print(Information, fmt.Sprintf(format, args...))
}

// Warnf prints a warning.
func (n *Notifier) Warnf(format string, args ...interface{}) {
	n.print(Warning, fmt.Sprintf(format, args...))
}

// Error prints err with the severity of its kind and returns that
// severity. A nil error prints nothing.
func (n *Notifier) Error(err error) Severity {
	if err == nil {
		return Information
	}
	sev := SeverityOf(err)
	n.print(sev, Message(err))
	return sev
}

func (n *Notifier) print(sev Severity, msg string) {
	n.colors[sev].Fprintf(n.w, "%s: ", sev)
	fmt.Fprintln(n.w, msg)
}

// Message renders err for the user. Validation errors list one line per
// field; other application errors show their message and cause.
func Message(err error) string {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(appErr.Message)
	for _, f := range appErr.Fields {
		b.WriteString("\n  - ")
		b.WriteString(f.String())
	}
	if appErr.Err != nil {
		b.WriteString(": ")
		b.WriteString(appErr.Err.Error())
	}
	return b.String()
}
