package cli

import (
	"github.com/ppiankov/pgreport/internal/console"
	"github.com/ppiankov/pgreport/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.xlsx>",
	Short: "Check a workbook for the sheets and columns the analyzer reads",
	Long: `Validate lists every sheet the analyzer expects and reports which sheets
and columns are present or missing. Missing pieces do not stop analyze, which
falls back to defaults, but the matching report sections stay empty.

Returns exit 0 if complete, exit 2 if anything is missing.

Example:
  pgreport validate "20 RPS.xlsx"`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	wb, err := loadWorkbook(args[0])
	if err != nil {
		return err
	}

	v := validator.New()
	result := v.Check(wb)
	p := console.New(cmd.OutOrStdout())

	p.Banner("Workbook: " + wb.Name)
	for _, s := range result.Sheets {
		switch {
		case s.OK():
			line := "%s: %d rows"
			fmtArgs := []interface{}{s.Name, s.Rows}
			if s.TimingColumns != "" {
				line += " (timing: %s)"
				fmtArgs = append(fmtArgs, s.TimingColumns)
			}
			p.Success(line, fmtArgs...)
		case s.LoadError != nil:
			p.Failure("%s: unreadable (%v)", s.Name, s.LoadError)
		case !s.Present:
			p.Failure("%s: missing", s.Name)
		default:
			p.Warning("%s: %d rows, missing columns", s.Name, s.Rows)
			for _, col := range s.MissingColumns {
				p.Detail("- %s", col)
			}
		}
	}
	for _, extra := range result.ExtraSheets {
		p.Detail("ignored sheet: %s", extra)
	}
	p.Rule()

	if err := v.Validate(wb); err != nil {
		p.Failure("INVALID: %d problems", len(result.Problems()))
		return err
	}
	p.Success("VALID: all expected sheets and columns present")
	return nil
}
