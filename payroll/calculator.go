/*
calculator.go - Attendance-to-salary proration

PURPOSE:
  Pure function from (attendance map, month, base salary) to a categorized
  summary and prorated total. Invoked on every read and on every save; the
  stored summary is only a cache of this output.

FORMULA:
  workingDays  = non-Sunday days in the month
  salaryPerDay = monthlySalary / workingDays   (0 when either is non-positive)
  fullDays     = present + casualLeave + holiday
  total        = round2(fullDays*salaryPerDay + halfDays*salaryPerDay/2)

  Sunday, LOP and plain absent days contribute nothing. Every calendar day
  lands in exactly one bucket, so the bucket counts always sum to the
  month's day count.

SEE ALSO:
  - types.go: Code semantics
  - service.go: Persists the map together with this summary
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fleet-rent-engine/core"
)

var two = decimal.NewFromInt(2)

// ComputeSummary tallies every calendar day of the month into exactly one
// bucket and prorates the monthly salary over non-Sunday days. Days missing
// from the map count as S on Sundays and A otherwise; unrecognized codes
// count as absent so the bucket total still covers the whole month.
func ComputeSummary(days AttendanceMap, year int, month time.Month, monthlySalary decimal.Decimal) SalarySummary {
	var sum SalarySummary

	for day := 1; day <= core.DaysInMonth(year, month); day++ {
		code, ok := days[day]
		if !ok {
			if core.IsSunday(year, month, day) {
				code = CodeSunday
			} else {
				code = CodeAbsent
			}
		}

		switch code {
		case CodePresent:
			sum.Present++
		case CodeHalfDay:
			sum.HalfDays++
		case CodeCasualLeave:
			sum.CasualLeave++
		case CodeHoliday:
			sum.Holiday++
		case CodeSunday:
			sum.Sunday++
		case CodeLossOfPay:
			sum.LOP++
		default:
			sum.Absent++
		}
	}

	workingDays := core.WorkingDaysInMonth(year, month)
	if workingDays == 0 || !monthlySalary.IsPositive() {
		sum.TotalSalary = decimal.Zero
		return sum
	}

	salaryPerDay := monthlySalary.Div(decimal.NewFromInt(int64(workingDays)))
	fullDays := decimal.NewFromInt(int64(sum.Present + sum.CasualLeave + sum.Holiday))
	halfDays := decimal.NewFromInt(int64(sum.HalfDays))

	sum.TotalSalary = core.Round2(
		fullDays.Mul(salaryPerDay).Add(halfDays.Mul(salaryPerDay.Div(two))),
	)
	return sum
}
