/*
export.go - Flat settlement report

PURPOSE:
  Serializes payroll entries into a tabular text report with a fixed
  header and a trailing TOTAL row. This is an output format, not a
  pricing decision: the report must be stable and diffable across runs
  for the same input.
*/
package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// exportHeader is fixed; downstream diff tooling depends on it.
const exportHeader = "Date,Worker,Shift,Category,Hours,Rate,Base Pay,Overtime Pay,Total Pay"

// Export renders entries for [from, to] as CSV text with a TOTAL row.
// Entries are assumed already in Settle's stable order; entries outside
// the range are skipped. A zero from/to disables that bound.
func Export(entries []PayrollEntry, from, to time.Time) string {
	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteByte('\n')

	totalHours := decimal.Zero
	totalBase := decimal.Zero
	totalOvertime := decimal.Zero
	total := decimal.Zero

	for _, e := range entries {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			e.Date.Format("2006-01-02"),
			e.WorkerID,
			e.ShiftID,
			e.ShiftCategory,
			e.HoursWorked.StringFixed(2),
			e.PayRate.StringFixed(2),
			e.BasePay.StringFixed(2),
			e.OvertimePay.StringFixed(2),
			e.TotalPay.StringFixed(2),
		)
		totalHours = totalHours.Add(e.HoursWorked)
		totalBase = totalBase.Add(e.BasePay)
		totalOvertime = totalOvertime.Add(e.OvertimePay)
		total = total.Add(e.TotalPay)
	}

	fmt.Fprintf(&b, "TOTAL,,,,%s,,%s,%s,%s\n",
		totalHours.StringFixed(2),
		totalBase.StringFixed(2),
		totalOvertime.StringFixed(2),
		total.StringFixed(2),
	)
	return b.String()
}
