package builtins

import (
	"time"

	"github.com/sunholo/aivi/internal/eval"
)

// calendar: isLeapYear/daysInMonth/endOfMonth/addDays/addMonths/addYears.
// addMonths/addYears clamp the resulting day to the new month's maximum
// rather than rolling into the next month (DESIGN.md Open Question
// resolution, per original_source/.../runtime/builtins/calendar.rs).
func calendarNamespace() *namespace {
	n := newNamespace()
	n.add("isLeapYear", 1, calIsLeapYear)
	n.add("daysInMonth", 2, calDaysInMonth)
	n.add("endOfMonth", 2, calEndOfMonth)
	n.add("addDays", 2, calAddDays)
	n.add("addMonths", 2, calAddMonths)
	n.add("addYears", 2, calAddYears)
	return n
}

func isLeapYear(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year, month int64) int64 {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
	return 30
}

func calIsLeapYear(args []eval.Value) (eval.Value, error) {
	year, err := wantInt("isLeapYear", args[0])
	if err != nil {
		return nil, err
	}
	return eval.Bool{Value: isLeapYear(year)}, nil
}

func calDaysInMonth(args []eval.Value) (eval.Value, error) {
	year, err := wantInt("daysInMonth", args[0])
	if err != nil {
		return nil, err
	}
	month, err := wantInt("daysInMonth", args[1])
	if err != nil {
		return nil, err
	}
	return eval.Int{Value: daysInMonth(year, month)}, nil
}

func calEndOfMonth(args []eval.Value) (eval.Value, error) {
	dt, ok := args[0].(eval.DateTime)
	if !ok {
		return nil, argError("endOfMonth", "DateTime", args[0])
	}
	y, m := int64(dt.Value.Year()), int64(dt.Value.Month())
	d := daysInMonth(y, m)
	t := time.Date(dt.Value.Year(), dt.Value.Month(), int(d), dt.Value.Hour(), dt.Value.Minute(), dt.Value.Second(), dt.Value.Nanosecond(), dt.Value.Location())
	return eval.DateTime{Value: t}, nil
}

func calAddDays(args []eval.Value) (eval.Value, error) {
	dt, ok := args[0].(eval.DateTime)
	if !ok {
		return nil, argError("addDays", "DateTime", args[0])
	}
	n, err := wantInt("addDays", args[1])
	if err != nil {
		return nil, err
	}
	return eval.DateTime{Value: dt.Value.AddDate(0, 0, int(n))}, nil
}

// shiftClamped moves a DateTime by dy years and dm months, clamping the
// day to the destination month's maximum (never rolling over).
func shiftClamped(dt time.Time, dy, dm int64) time.Time {
	totalMonths := int64(dt.Month()) - 1 + dm
	year := int64(dt.Year()) + dy + totalMonths/12
	month := totalMonths % 12
	if month < 0 {
		month += 12
		year--
	}
	month++ // back to 1-indexed
	day := int64(dt.Day())
	maxDay := daysInMonth(year, month)
	if day > maxDay {
		day = maxDay
	}
	return time.Date(int(year), time.Month(month), int(day), dt.Hour(), dt.Minute(), dt.Second(), dt.Nanosecond(), dt.Location())
}

func calAddMonths(args []eval.Value) (eval.Value, error) {
	dt, ok := args[0].(eval.DateTime)
	if !ok {
		return nil, argError("addMonths", "DateTime", args[0])
	}
	n, err := wantInt("addMonths", args[1])
	if err != nil {
		return nil, err
	}
	return eval.DateTime{Value: shiftClamped(dt.Value, 0, n)}, nil
}

func calAddYears(args []eval.Value) (eval.Value, error) {
	dt, ok := args[0].(eval.DateTime)
	if !ok {
		return nil, argError("addYears", "DateTime", args[0])
	}
	n, err := wantInt("addYears", args[1])
	if err != nil {
		return nil, err
	}
	return eval.DateTime{Value: shiftClamped(dt.Value, n, 0)}, nil
}
