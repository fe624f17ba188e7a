package reports

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
)

//go:embed templates/*.html
var templateFS embed.FS

var form2550MTemplate = template.Must(
	template.New("form2550m.html").
		Funcs(template.FuncMap{"peso": money.Format}).
		ParseFS(templateFS, "templates/form2550m.html"),
)

// AlphalistCSVHeader is the column order written by WriteAlphalistCSV.
var AlphalistCSVHeader = []string{
	"seq", "tin", "last_name", "first_name", "middle_name",
	"gross_compensation", "non_taxable_contributions", "taxable_compensation", "tax_withheld",
}

// RenderForm2550MHTML renders the printable declaration, ready for HTML to
// PDF conversion.
func RenderForm2550MHTML(form Form2550M) (string, error) {
	var buf bytes.Buffer
	if err := form2550MTemplate.Execute(&buf, form); err != nil {
		return "", fmt.Errorf("reports: render form 2550M: %w", err)
	}
	return buf.String(), nil
}

// WriteAlphalistCSV writes one row per entry after the header. Amounts use
// plain two-place decimals without currency sign or grouping.
func WriteAlphalistCSV(w io.Writer, entries []AlphalistEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AlphalistCSVHeader); err != nil {
		return err
	}
	for i, e := range entries {
		row := []string{
			strconv.Itoa(i + 1),
			e.TIN,
			e.LastName,
			e.FirstName,
			e.MiddleName,
			e.GrossCompensation.StringFixed(money.Places),
			e.NonTaxableContributions.StringFixed(money.Places),
			e.TaxableCompensation.StringFixed(money.Places),
			e.TaxWithheld.StringFixed(money.Places),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
