package harvest

import "time"

// DateLayout is the day/month/year form the archive expects.
const DateLayout = "02/01/2006"

// DaysPerMonth is how many days one month of look-back covers.
const DaysPerMonth = 30

// FormatDate renders a date the way the archive API expects it.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// EnumerateDates returns every day from 30*monthsBack days ago up to now,
// oldest first, both ends included.
func EnumerateDates(monthsBack int) []time.Time {
	return DateRange(time.Now(), monthsBack)
}

// DateRange is EnumerateDates against a fixed end instead of the wall clock.
// Every element keeps end's time of day.
func DateRange(end time.Time, monthsBack int) []time.Time {
	days := DaysPerMonth * monthsBack
	if days < 0 {
		days = 0
	}

	start := end.AddDate(0, 0, -days)
	dates := make([]time.Time, 0, days+1)
	for i := 0; i <= days; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}
