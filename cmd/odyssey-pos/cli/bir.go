package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/contributions"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/vat"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/withholding"
)

// Exit codes returned by BIRCLI.Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const birUsage = `usage: odyssey-pos bir <command> [flags]

commands:
  vat            compute VAT for an amount
  withholding    compute creditable withholding tax
  employee-tax   compute monthly compensation withholding
  contributions  compute SSS, PhilHealth and Pag-IBIG shares
  format         format an amount in pesos
`

// BIRCLI runs the offline tax calculators.
type BIRCLI struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewBIRCLI constructs a CLI writing to the given streams. Nil streams fall
// back to the process streams.
func NewBIRCLI(stdout, stderr io.Writer) *BIRCLI {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &BIRCLI{Stdout: stdout, Stderr: stderr}
}

// Run dispatches args (without the leading "bir") and returns an exit code.
func (c *BIRCLI) Run(args []string) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(c.Stderr, birUsage)
		return ExitUsage
	}
	var err error
	switch args[0] {
	case "vat":
		err = c.vat(args[1:])
	case "withholding":
		err = c.withholding(args[1:])
	case "employee-tax":
		err = c.employeeTax(args[1:])
	case "contributions":
		err = c.contributions(args[1:])
	case "format":
		err = c.format(args[1:])
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(c.Stdout, birUsage)
		return ExitOK
	default:
		_, _ = fmt.Fprintf(c.Stderr, "bir: unknown command %q\n\n%s", args[0], birUsage)
		return ExitUsage
	}
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp), errors.Is(err, errUsage):
		return ExitUsage
	default:
		_, _ = fmt.Fprintf(c.Stderr, "bir %s: %v\n", args[0], err)
		return ExitError
	}
}

var errUsage = errors.New("usage")

func (c *BIRCLI) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("bir "+name, flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	return fs
}

func (c *BIRCLI) parseAmount(fs *flag.FlagSet, name, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		_, _ = fmt.Fprintf(c.Stderr, "--%s is required\n", name)
		fs.Usage()
		return decimal.Zero, errUsage
	}
	return money.Parse(raw)
}

func (c *BIRCLI) vat(args []string) error {
	fs := c.flagSet("vat")
	amount := fs.String("amount", "", "sale amount")
	mode := fs.String("mode", string(vat.ModeExclusive), "EXCLUSIVE, INCLUSIVE, EXEMPT or ZERO_RATED")
	rate := fs.String("rate", "", "VAT rate as a fraction (default 0.12)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	value, err := c.parseAmount(fs, "amount", *amount)
	if err != nil {
		return err
	}
	parsedMode, err := vat.ParseMode(strings.ToUpper(*mode))
	if err != nil {
		return err
	}
	opts := vat.Options{Mode: parsedMode}
	if *rate != "" {
		if opts.Rate, err = decimal.NewFromString(*rate); err != nil {
			return fmt.Errorf("invalid rate %q", *rate)
		}
	}
	result, err := vat.Calculate(value, opts)
	if err != nil {
		return err
	}
	summary := result.Summary()
	if *asJSON {
		return c.writeJSON(summary)
	}
	return c.writeTable(
		[2]string{"Mode", string(summary.Mode)},
		[2]string{"Vatable amount", money.Format(summary.VatableAmount)},
		[2]string{"VAT rate", summary.VATRate.Shift(2).String() + "%"},
		[2]string{"VAT amount", money.Format(summary.VATAmount)},
		[2]string{"Total", money.Format(summary.TotalAmount)},
	)
}

func (c *BIRCLI) withholding(args []string) error {
	fs := c.flagSet("withholding")
	amount := fs.String("amount", "", "gross income payment")
	category := fs.String("category", "", "goods, services, professional or compensation")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	value, err := c.parseAmount(fs, "amount", *amount)
	if err != nil {
		return err
	}
	cat, err := withholding.ParseCategory(strings.ToLower(*category))
	if err != nil {
		return err
	}
	result, err := withholding.Calculate(value, cat)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.writeJSON(result)
	}
	return c.writeTable(
		[2]string{"Category", string(result.Type)},
		[2]string{"Rate", result.Rate.Shift(2).String() + "%"},
		[2]string{"Withheld", money.Format(result.Amount)},
		[2]string{"Net", money.Format(result.NetAmount)},
	)
}

func (c *BIRCLI) employeeTax(args []string) error {
	fs := c.flagSet("employee-tax")
	salary := fs.String("salary", "", "monthly gross compensation")
	exemptions := fs.Int("exemptions", withholding.DefaultExemptions, "exemption slots")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	value, err := c.parseAmount(fs, "salary", *salary)
	if err != nil {
		return err
	}
	tax, err := withholding.EmployeeMonthlyTax(value, *exemptions)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.writeJSON(map[string]any{
			"monthly_salary": money.Round(value),
			"exemptions":     *exemptions,
			"monthly_tax":    tax,
		})
	}
	return c.writeTable(
		[2]string{"Monthly salary", money.Format(value)},
		[2]string{"Exemptions", fmt.Sprint(*exemptions)},
		[2]string{"Monthly tax", money.Format(tax)},
	)
}

func (c *BIRCLI) contributions(args []string) error {
	fs := c.flagSet("contributions")
	salary := fs.String("salary", "", "monthly basic salary")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	value, err := c.parseAmount(fs, "salary", *salary)
	if err != nil {
		return err
	}
	summary, err := contributions.Compute(value)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.writeJSON(summary)
	}
	w := tabwriter.NewWriter(c.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "Agency\tEmployee\tEmployer\tTotal\t")
	for _, row := range []struct {
		name string
		c    contributions.Contribution
	}{
		{"SSS", summary.SSS},
		{"PhilHealth", summary.PhilHealth},
		{"Pag-IBIG", summary.PagIBIG},
	} {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", row.name, money.Format(row.c.Employee), money.Format(row.c.Employer), money.Format(row.c.Total))
	}
	_, _ = fmt.Fprintf(w, "Total\t%s\t%s\t%s\t\n",
		money.Format(summary.EmployeeTotal),
		money.Format(summary.EmployerTotal),
		money.Format(summary.EmployeeTotal.Add(summary.EmployerTotal)))
	return w.Flush()
}

func (c *BIRCLI) format(args []string) error {
	fs := c.flagSet("format")
	amount := fs.String("amount", "", "amount to format")
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw := *amount
	if raw == "" && fs.NArg() > 0 {
		raw = fs.Arg(0)
	}
	value, err := c.parseAmount(fs, "amount", raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.Stdout, money.Format(value))
	return err
}

func (c *BIRCLI) writeJSON(v any) error {
	enc := json.NewEncoder(c.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *BIRCLI) writeTable(rows ...[2]string) error {
	w := tabwriter.NewWriter(c.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
	}
	return w.Flush()
}
