package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nonibytes/patientstore/patientstore"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func printPatients(w io.Writer, ps []patientstore.Patient) {
	for _, p := range ps {
		fmt.Fprintf(w, "- %s  %s %s  %s  %s  active=%s\n",
			p.ID, p.Name.Family, strings.Join(p.Name.Given, " "),
			p.BirthDate.UTC().Format("2006-01-02T15:04:05Z07:00"), p.Gender, p.Active)
	}
}
