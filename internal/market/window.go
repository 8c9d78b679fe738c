package market

import "time"

// Window is the local-day reporting window with its UTC projection.
type Window struct {
	NowLocal   time.Time
	StartLocal time.Time
	EndLocal   time.Time
	StartUTC   time.Time
	EndUTC     time.Time
}

// TodayWindow computes the [local midnight, next midnight) window for the
// given instant in the given zone.
func TodayWindow(loc *time.Location, now time.Time) Window {
	nowLocal := now.In(loc)
	startLocal := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	endLocal := startLocal.AddDate(0, 0, 1)
	return Window{
		NowLocal:   nowLocal,
		StartLocal: startLocal,
		EndLocal:   endLocal,
		StartUTC:   startLocal.UTC(),
		EndUTC:     endLocal.UTC(),
	}
}

// LocalDate returns the window's date in YYYY-MM-DD form.
func (w Window) LocalDate() string { return w.StartLocal.Format("2006-01-02") }
