package importer

import "time"

// DeadlineInBusinessDays returns the date n business days after from,
// counting Monday through Friday only. Public holidays are not
// modelled.
func DeadlineInBusinessDays(from time.Time, n int) time.Time {
	d := from
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			counted++
		}
	}
	return d
}
