// Package output prints matched entries as a table or as JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/ssargent/utmptrace/pkg/entry"
	"github.com/ssargent/utmptrace/pkg/query"
)

// TimeLayout is used for the Time column
const TimeLayout = "2006-01-02 15:04:05.000000"

// NoMatches is printed when a file has nothing to report
const NoMatches = "---------  NO MATCHED RECORDS FOUND  ----------"

// Renderer writes a file's reported entries to an output stream.
type Renderer interface {
	Render(file string, entries []query.Selection) error
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
)

// New returns the renderer for format ("table" or "json")
func New(format string, w io.Writer) (Renderer, error) {
	switch format {
	case "", "table":
		return NewTableRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// TableRenderer prints entries as aligned columns.
type TableRenderer struct {
	w io.Writer
}

// NewTableRenderer returns a Renderer that writes a table to w
func NewTableRenderer(w io.Writer) *TableRenderer {
	return &TableRenderer{w: w}
}

var tableColumns = []string{
	"INDEX", "UNIONCODE", "TYPE", "PID", "TERMINAL", "USERNAME", "HOSTNAME", "SESSION ID", "TIME", "IP ADDR",
}

func (r *TableRenderer) Render(file string, entries []query.Selection) error {
	if _, err := fmt.Fprintf(r.w, "\n%s\n\n", styleTitle.Render("[ Targeting on "+file+" ]")); err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(r.w, NoMatches)
		return err
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableColumns, "\t"))
	for i, sel := range entries {
		e := sel.Entry
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			i,
			e.UnionCode,
			e.TypeString(),
			e.PID,
			e.Line,
			e.User,
			e.Host,
			e.Session,
			e.Time.Format(TimeLayout),
			e.AddrString())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Style the header after alignment so escape codes do not skew column widths.
	header, rows, _ := strings.Cut(buf.String(), "\n")
	_, err := fmt.Fprintf(r.w, "%s\n%s", styleHeader.Render(header), rows)
	return err
}

// JSONRenderer prints one JSON document per file.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON to w
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONRenderer{enc: enc}
}

type jsonEntry struct {
	Position int `json:"position"`
	*entry.Entry
}

type jsonReport struct {
	File    string      `json:"file"`
	Entries []jsonEntry `json:"entries"`
}

func (r *JSONRenderer) Render(file string, entries []query.Selection) error {
	report := jsonReport{File: file, Entries: make([]jsonEntry, 0, len(entries))}
	for _, sel := range entries {
		report.Entries = append(report.Entries, jsonEntry{Position: sel.Position, Entry: sel.Entry})
	}
	return r.enc.Encode(report)
}
