package generic

import "fmt"

// =============================================================================
// LUNAR LABELS - Hijri display strings, never used for pricing
// =============================================================================

// HijriDate is a day in the Islamic (Hijri) calendar.
type HijriDate struct {
	Year  int
	Month int // 1-12
	Day   int // 1-30
}

var hijriMonths = [12]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// String returns the numeric form, e.g. "1446-09-01".
func (h HijriDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", h.Year, h.Month, h.Day)
}

// Label returns the display form, e.g. "1 Ramadan 1446".
func (h HijriDate) Label() string {
	return fmt.Sprintf("%d %s %d", h.Day, hijriMonths[h.Month-1], h.Year)
}

// LunarCalendar converts a solar day into a Hijri date.
// ok is false when the calendar cannot represent the day.
type LunarCalendar interface {
	ToHijri(tp TimePoint) (HijriDate, bool)
}

// TabularHijri is the arithmetical (civil) Islamic calendar: a 30-year cycle
// with 11 leap years. It can differ by a day from sighting-based calendars,
// which is acceptable for labels.
type TabularHijri struct{}

// civil epoch, 1 Muharram 1 AH = Julian day 1948440
const hijriEpochJDN = 1948440

func (TabularHijri) ToHijri(tp TimePoint) (HijriDate, bool) {
	if tp.IsZero() {
		return HijriDate{}, false
	}
	jd := julianDayNumber(tp.Year(), int(tp.Month()), tp.Day())
	if jd < hijriEpochJDN {
		return HijriDate{}, false
	}

	l := jd - hijriEpochJDN + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30

	if year < 1 || month < 1 || month > 12 || day < 1 || day > 30 {
		return HijriDate{}, false
	}
	return HijriDate{Year: year, Month: month, Day: day}, true
}

// NoLunar is used where lunar support is switched off.
type NoLunar struct{}

func (NoLunar) ToHijri(TimePoint) (HijriDate, bool) { return HijriDate{}, false }

// HijriLabel returns the display label for tp, or "" when cal is nil or
// cannot represent the day. It never fails.
func HijriLabel(cal LunarCalendar, tp TimePoint) string {
	if cal == nil {
		return ""
	}
	h, ok := cal.ToHijri(tp)
	if !ok {
		return ""
	}
	return h.Label()
}

func julianDayNumber(y, m, d int) int {
	a := (14 - m) / 12
	y2 := y + 4800 - a
	m2 := m + 12*a - 3
	return d + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}
