// Table output for reports: a -fmt spec selects fields and an output style, and FormatData prints
// rows of typed data according to a map of field formatters.
//
// The -fmt spec is a comma-separated list of field names, aliases and controls.  Controls are
// "fixed" (the default), "csv", "csvnamed", "json", "awk", "header" and "noheader".  A field name
// may carry a modifier: "/sec" prints durations and timestamps as seconds, "/iso" prints timestamps
// in RFC3339 format.

package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

////////////////////////////////////////////////////////////////////////////////////////////////////
//
// Print modifiers.

type PrintMods = int

const (
	// These apply per-field according to modifiers
	PrintModSec = (1 << iota) // durations and timestamps are printed as seconds
	PrintModIso               // timestamps are printed as RFC3339 timestamps

	// These are for the output format and are applied to all fields
	PrintModFixed // fixed format
	PrintModJson  // JSON format
	PrintModCsv   // CSV format
	PrintModAwk   // AWK format
)

func ComputePrintMods(opts *FormatOptions) PrintMods {
	var x PrintMods
	switch {
	case opts.Csv:
		x = PrintModCsv
	case opts.Json:
		x = PrintModJson
	case opts.Awk:
		x = PrintModAwk
	case opts.Fixed:
		x = PrintModFixed
	}
	return x
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Formatting specs

type FormatOptions struct {
	Json   bool // json explicitly requested
	Csv    bool // csv or csvnamed explicitly requested
	Awk    bool // awk explicitly requested
	Fixed  bool // fixed output requested or defaulted
	Named  bool // csvnamed explicitly requested
	Header bool // fixed without noheader, or csv/awk with header
}

type FieldSpec struct {
	Name   string
	Mod    PrintMods // /sec, /iso
	Header string    // name + modifier
}

// AliasOf is nonempty for a formatter installed under an alias name, and holds the canonical name.

type Formatter[T any] struct {
	Fmt     func(data T, ctx PrintMods) string
	Help    string
	AliasOf string
}

func DefAlias[T any](formatters map[string]Formatter[T], canonical, alias string) {
	f, found := formatters[canonical]
	if !found {
		panic(fmt.Sprintf("Formatter not found: %s", canonical))
	}
	f.AliasOf = canonical
	formatters[alias] = f
}

const (
	// Stops alias expansion loops and silly specs.
	maxFields = 100
)

// If fmtOpt is "" or "help" then the spec is the defaults, otherwise the spec is fmtOpt, falling
// back on the defaults for the fields if fmtOpt names none.
//
// Return the known fields in the spec wrt `formatters`, and the set of other strings found in the
// spec (controls, misspellings), plus "help" if fmtOpt=="help".  Aliases are expanded recursively.

func ParseFormatSpec[T any](
	defaults, fmtOpt string,
	formatters map[string]Formatter[T],
	aliases map[string][]string,
) (fields []FieldSpec, others map[string]bool) {
	fields = make([]FieldSpec, 0)
	others = make(map[string]bool)
	spec := fmtOpt
	if fmtOpt == "" || fmtOpt == "help" {
		spec = defaults
	}
	if fmtOpt == "help" {
		others["help"] = true
	}
	if spec != "" {
		for _, fieldName := range strings.Split(spec, ",") {
			fields, _ = addField(fieldName, fields, others, formatters, aliases)
		}
	}
	// A spec with only controls, eg "csv", gets the default fields.
	if len(fields) == 0 && spec != defaults && defaults != "" {
		for _, fieldName := range strings.Split(defaults, ",") {
			fields, _ = addField(fieldName, fields, others, formatters, aliases)
		}
	}
	return fields, others
}

func addField[T any](
	fieldName string,
	fields []FieldSpec,
	others map[string]bool,
	formatters map[string]Formatter[T],
	aliases map[string][]string,
) ([]FieldSpec, bool) {
	if newFields, found := recordField(fieldName, "", 0, fields, others, formatters, aliases); found {
		return newFields, true
	}
	if before, after, found := strings.Cut(fieldName, "/"); found {
		var m PrintMods
		switch after {
		case "sec":
			m = PrintModSec
		case "iso":
			m = PrintModIso
		}
		if m != 0 {
			if newFields, found :=
				recordField(before, "/"+after, m, fields, others, formatters, aliases); found {
				return newFields, true
			}
		}
	}
	others[fieldName] = true
	return fields, false
}

func recordField[T any](
	kwd, mod string,
	m PrintMods,
	fields []FieldSpec,
	others map[string]bool,
	formatters map[string]Formatter[T],
	aliases map[string][]string,
) ([]FieldSpec, bool) {
	anyAdded := false
	if _, found := formatters[kwd]; found {
		if len(fields) >= maxFields {
			return fields, true
		}
		fields = append(fields, FieldSpec{Name: kwd, Mod: m, Header: kwd + mod})
		anyAdded = true
	}
	if expansion, found := aliases[kwd]; found {
		for _, alias := range expansion {
			var added bool
			if len(fields) >= maxFields {
				return fields, true
			}
			fields, added = addField(alias, fields, others, formatters, aliases)
			anyAdded = anyAdded || added
		}
	}
	return fields, anyAdded
}

// Interpret the non-field attributes as formatting options.  "fixed" is the default; it gets a
// header unless "noheader" is present, csv and awk get a header only if "header" is present, json
// never gets one.

func StandardFormatOptions(others map[string]bool) *FormatOptions {
	csvnamed := others["csvnamed"]
	csv := others["csv"] || csvnamed
	json := others["json"] && !csv
	awk := others["awk"] && !csv && !json
	fixed := !csv && !json && !awk
	header := (fixed && !others["noheader"]) || ((csv || awk) && others["header"])
	return &FormatOptions{
		Csv:    csv,
		Json:   json,
		Awk:    awk,
		Fixed:  fixed,
		Named:  csvnamed,
		Header: header,
	}
}

// Anything in `others` that is not a control is an error: an unknown field name.

var controls = map[string]bool{
	"fixed":    true,
	"csv":      true,
	"csvnamed": true,
	"json":     true,
	"awk":      true,
	"header":   true,
	"noheader": true,
	"help":     true,
}

func UnknownFields(others map[string]bool) []string {
	unknown := make([]string, 0)
	for k := range others {
		if !controls[k] {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	return unknown
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Output

func FormatData[T any](
	out io.Writer,
	fields []FieldSpec,
	formatters map[string]Formatter[T],
	opts *FormatOptions,
	data []T,
) {
	ctx := ComputePrintMods(opts)

	// cols is a column-major representation of the output matrix, one column per field.
	cols := make([][]string, len(fields))
	for c, f := range fields {
		cols[c] = make([]string, len(data))
		fmtfn := formatters[f.Name].Fmt
		for r, x := range data {
			cols[c][r] = fmtfn(x, ctx|f.Mod)
		}
	}

	switch {
	case opts.Csv:
		formatCsv(out, fields, opts, cols, len(data))
	case opts.Json:
		formatJson(out, fields, cols, len(data))
	case opts.Awk:
		formatAwk(out, fields, opts, cols, len(data))
	default:
		formatFixed(out, fields, opts, cols, len(data))
	}
}

func formatFixed(unbufOut io.Writer, fields []FieldSpec, opts *FormatOptions, cols [][]string, rows int) {
	out := Buffered(unbufOut)
	defer out.Flush()

	// The column width is the max across all the entries in the column, including the header.
	widths := make([]int, len(fields))
	for col := range fields {
		if opts.Header {
			widths[col] = utf8.RuneCountInString(fields[col].Header)
		}
		for row := 0; row < rows; row++ {
			widths[col] = max(widths[col], utf8.RuneCountInString(cols[col][row]))
		}
	}

	var s strings.Builder
	if opts.Header {
		for col := range fields {
			writeStringPadded(&s, widths[col], fields[col].Header)
		}
		fmt.Fprintln(out, strings.TrimRight(s.String(), " "))
	}
	for row := 0; row < rows; row++ {
		s.Reset()
		for col := range fields {
			writeStringPadded(&s, widths[col], cols[col][row])
		}
		fmt.Fprintln(out, strings.TrimRight(s.String(), " "))
	}
}

func writeStringPadded(s *strings.Builder, width int, str string) {
	s.WriteString(str)
	s.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(str)+2))
}

func formatCsv(out io.Writer, fields []FieldSpec, opts *FormatOptions, cols [][]string, rows int) {
	w := csv.NewWriter(out)
	defer w.Flush()

	outFields := make([]string, len(fields))
	if opts.Header && !opts.Named {
		for i := range fields {
			outFields[i] = fields[i].Header
		}
		w.Write(outFields)
	}
	for row := 0; row < rows; row++ {
		for col := range fields {
			if opts.Named {
				outFields[col] = fields[col].Header + "=" + cols[col][row]
			} else {
				outFields[col] = cols[col][row]
			}
		}
		w.Write(outFields)
	}
}

// There's no natural fit for the JSON encoder here since every value is already a string, so just
// do it manually.
func formatJson(unbufOut io.Writer, fields []FieldSpec, cols [][]string, rows int) {
	out := Buffered(unbufOut)
	defer out.Flush()

	quotedFields := make([]string, len(fields))
	for i := range fields {
		quotedFields[i] = QuoteJson(fields[i].Header)
	}

	fmt.Fprint(out, "[")
	var s strings.Builder
	for row := 0; row < rows; row++ {
		s.Reset()
		if row > 0 {
			s.WriteRune(',')
		}
		s.WriteRune('{')
		for col := range quotedFields {
			if col > 0 {
				s.WriteRune(',')
			}
			s.WriteString(quotedFields[col])
			s.WriteRune(':')
			s.WriteString(QuoteJson(cols[col][row]))
		}
		s.WriteRune('}')
		fmt.Fprint(out, s.String())
	}
	fmt.Fprintln(out, "]")
}

// Quote a string for JSON.  Control characters become blanks.
func QuoteJson(s string) string {
	var t strings.Builder
	t.WriteRune('"')
	for _, r := range s {
		switch {
		case r < ' ':
			t.WriteRune(' ')
		case r == '"' || r == '\\':
			t.WriteRune('\\')
			t.WriteRune(r)
		default:
			t.WriteRune(r)
		}
	}
	t.WriteRune('"')
	return t.String()
}

// awk output: fields are space-separated and spaces are not allowed within fields, they are
// replaced by `_`.  Empty fields are printed as `.`.
func formatAwk(unbufOut io.Writer, fields []FieldSpec, opts *FormatOptions, cols [][]string, rows int) {
	out := Buffered(unbufOut)
	defer out.Flush()

	var line strings.Builder
	emit := func(val func(col int) string) {
		line.Reset()
		for col := range fields {
			if col > 0 {
				line.WriteRune(' ')
			}
			v := val(col)
			if v == "" {
				v = "."
			}
			line.WriteString(strings.ReplaceAll(v, " ", "_"))
		}
		fmt.Fprintln(out, line.String())
	}
	if opts.Header {
		emit(func(col int) string { return fields[col].Header })
	}
	for row := 0; row < rows; row++ {
		emit(func(col int) string { return cols[col][row] })
	}
}

func Buffered(unbufOut io.Writer) *bufio.Writer {
	if b, ok := unbufOut.(*bufio.Writer); ok {
		return b
	}
	return bufio.NewWriter(unbufOut)
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// -fmt help

type FormatHelp struct {
	Text     string
	Fields   []string
	Helps    map[string]string
	Aliases  map[string][]string
	Defaults string
}

func StandardFormatHelp[T any](
	fmtOpt string,
	helpText string,
	formatters map[string]Formatter[T],
	aliases map[string][]string,
	defaultFields string,
) *FormatHelp {
	if fmtOpt != "help" {
		return nil
	}
	fields := make([]string, 0, len(formatters))
	helps := make(map[string]string, len(formatters))
	newAliases := maps.Clone(aliases)
	for k, v := range formatters {
		if v.AliasOf != "" {
			newAliases[k] = []string{v.AliasOf}
		} else {
			fields = append(fields, k)
			helps[k] = v.Help
		}
	}
	return &FormatHelp{
		Text:     helpText,
		Fields:   fields,
		Helps:    helps,
		Aliases:  newAliases,
		Defaults: defaultFields,
	}
}

func PrintFormatHelp(out io.Writer, h *FormatHelp) {
	if h == nil {
		return
	}
	fmt.Fprintln(out, strings.TrimSpace(h.Text))
	fmt.Fprintln(out, "\nSyntax:\n  -fmt=(field|alias|control),...")
	fmt.Fprintln(out, "\nFields:")
	fields := slices.Sorted(slices.Values(h.Fields))
	for _, f := range fields {
		fmt.Fprintf(out, "  %s - %s\n", f, h.Helps[f])
	}
	if len(h.Aliases) > 0 {
		fmt.Fprintln(out, "\nAliases:")
		for _, k := range slices.Sorted(maps.Keys(h.Aliases)) {
			// Do not sort the names in the expansion because the order matters
			fmt.Fprintf(out, "  %s --> %s\n", k, strings.Join(h.Aliases[k], ","))
		}
	}
	fmt.Fprintf(out, `
Defaults:
  %s

Controls:
  fixed, csv, csvnamed, json, awk, header, noheader

Modifiers:
  field/sec prints durations and timestamps as seconds, field/iso prints timestamps as RFC3339
`, h.Defaults)
}
