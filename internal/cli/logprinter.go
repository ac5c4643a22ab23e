package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Predefined palette of distinct colors for actors
var colorPalette = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
}

var (
	successColor = color.New(color.FgHiGreen)
	failureColor = color.New(color.FgHiRed)
	neutralColor = color.New(color.FgHiWhite, color.Faint)
)

// auditPrinter renders audit records one per line. Every actor keeps the same
// color for the whole listing.
type auditPrinter struct {
	w           io.Writer
	actorColors map[string]*color.Color
	next        int
}

func newAuditPrinter(w io.Writer) *auditPrinter {
	return &auditPrinter{w: w, actorColors: make(map[string]*color.Color)}
}

func (p *auditPrinter) actor(name string) string {
	name = orUnknown(name)
	c := p.actorColors[name]
	if c == nil {
		c = colorPalette[p.next%len(colorPalette)]
		p.actorColors[name] = c
		p.next++
	}
	return c.Sprint(name)
}

// outcome colors a status or decision by its meaning.
func outcome(s string) string {
	switch strings.ToLower(s) {
	case "success", "succeeded", "ok", "allow", "allowed", "permit", "granted":
		return successColor.Sprint(s)
	case "failure", "failed", "error":
		return failureColor.Sprint("❗ " + s)
	case "denied", "deny", "forbidden", "blocked":
		return failureColor.Sprint("🛡️ " + s)
	case "":
		return neutralColor.Sprint("Unknown")
	default:
		return s
	}
}

func (p *auditPrinter) printLog(l *AuditLog) {
	fmt.Fprintf(p.w, "  [%s] %s %s %s ▶ %s\n",
		orUnknown(l.Timestamp), p.actor(l.Actor()), orUnknown(l.Action), orUnknown(l.Target()), outcome(l.Status))
	if l.Details != "" {
		fmt.Fprintf(p.w, "      %s\n", indentMultiline(l.Details, "      "))
	}
}

func (p *auditPrinter) printSAMLog(l *SAMAuditLog) {
	fmt.Fprintf(p.w, "  [%s] %s %s %s on %s\n",
		orUnknown(l.Timestamp), p.actor(l.Principal), outcome(l.Decision), orUnknown(l.Permission), orUnknown(l.Resource))
	if l.Reason != "" {
		fmt.Fprintf(p.w, "      Reason: %s\n", indentMultiline(l.Reason, "      "))
	}
}

// indentMultiline adds indentation to all lines except the first in a multiline string
func indentMultiline(text, indent string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return text
	}
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}
