package workinghours

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

var hmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayNames[day]
}

// ValidHM accepts 24h "HH:MM".
func ValidHM(s string) bool {
	return hmPattern.MatchString(s)
}

func minutesOf(hm string) (int, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateDay checks one row before it is stored.
func ValidateDay(wh models.WorkingHours) error {
	if wh.DayOfWeek < 0 || wh.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 and 6")
	}
	if !wh.IsOpen {
		return nil
	}
	if !ValidHM(wh.OpenTime) || !ValidHM(wh.CloseTime) {
		return fmt.Errorf("open_time and close_time must be HH:MM")
	}
	open, _ := minutesOf(wh.OpenTime)
	closing, _ := minutesOf(wh.CloseTime)
	if closing <= open {
		return fmt.Errorf("close_time must be after open_time")
	}
	return nil
}

// Defaults: Mon-Fri 08:00-18:00, Sat 08:00-16:00, Sun closed.
func Defaults() []models.WorkingHours {
	out := make([]models.WorkingHours, 0, 7)
	for day := 0; day < 7; day++ {
		wh := models.WorkingHours{DayOfWeek: day, DayName: DayName(day), IsOpen: true, OpenTime: "08:00", CloseTime: "18:00"}
		switch day {
		case 0:
			wh.IsOpen = false
			wh.OpenTime = ""
			wh.CloseTime = ""
			wh.Notes = "Closed on Sundays"
		case 6:
			wh.CloseTime = "16:00"
		}
		out = append(out, wh)
	}
	return out
}

type Schedule struct {
	days map[int]models.WorkingHours
	loc  *time.Location
}

func NewSchedule(hours []models.WorkingHours, loc *time.Location) *Schedule {
	s := &Schedule{days: make(map[int]models.WorkingHours, len(hours)), loc: loc}
	for _, wh := range hours {
		s.days[wh.DayOfWeek] = wh
	}
	return s
}

// bounds returns the open interval for t's calendar day, or ok=false when closed.
func (s *Schedule) bounds(t time.Time) (time.Time, time.Time, bool) {
	local := t.In(s.loc)
	wh, found := s.days[int(local.Weekday())]
	if !found || !wh.IsOpen {
		return time.Time{}, time.Time{}, false
	}
	open, err1 := minutesOf(wh.OpenTime)
	closing, err2 := minutesOf(wh.CloseTime)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return midnight.Add(time.Duration(open) * time.Minute), midnight.Add(time.Duration(closing) * time.Minute), true
}

type CheckResult struct {
	IsOpen   bool       `json:"is_open"`
	Reason   string     `json:"reason,omitempty"`
	NextOpen *time.Time `json:"next_open,omitempty"`
}

// Check accepts start when the whole service fits inside the day's hours.
func (s *Schedule) Check(start time.Time, service time.Duration) CheckResult {
	local := start.In(s.loc)
	open, closing, ok := s.bounds(local)
	if !ok {
		return CheckResult{
			Reason:   fmt.Sprintf("we are closed on %s", local.Weekday()),
			NextOpen: s.NextOpen(local),
		}
	}

	if local.Before(open) {
		return CheckResult{
			Reason:   fmt.Sprintf("we open at %s on %s", open.Format("15:04"), local.Weekday()),
			NextOpen: &open,
		}
	}

	if local.Add(service).After(closing) {
		return CheckResult{
			Reason:   fmt.Sprintf("the last booking on %s must finish by %s", local.Weekday(), closing.Format("15:04")),
			NextOpen: s.NextOpen(local),
		}
	}

	return CheckResult{IsOpen: true}
}

// NextOpen returns the first opening instant strictly after t, looking one week ahead.
func (s *Schedule) NextOpen(t time.Time) *time.Time {
	local := t.In(s.loc)
	for offset := 0; offset <= 7; offset++ {
		day := local.AddDate(0, 0, offset)
		open, _, ok := s.bounds(day)
		if ok && open.After(local) {
			return &open
		}
	}
	return nil
}

type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
}

// Slots splits the open hours of date's day into back-to-back slots of length d.
func (s *Schedule) Slots(date time.Time, d time.Duration) []Slot {
	if d <= 0 {
		return nil
	}
	open, closing, ok := s.bounds(date)
	if !ok {
		return nil
	}

	var slots []Slot
	for start := open; !start.Add(d).After(closing); start = start.Add(d) {
		slots = append(slots, Slot{
			Start:     start,
			End:       start.Add(d),
			Label:     start.Format("15:04"),
			Available: true,
		})
	}
	return slots
}

type DaySummary struct {
	DayOfWeek int    `json:"day_of_week"`
	DayName   string `json:"day_name"`
	IsOpen    bool   `json:"is_open"`
	Hours     string `json:"hours"`
}

func (s *Schedule) Summary() []DaySummary {
	out := make([]DaySummary, 0, 7)
	for day := 0; day < 7; day++ {
		wh, found := s.days[day]
		sum := DaySummary{DayOfWeek: day, DayName: DayName(day), Hours: "Closed"}
		if found && wh.IsOpen {
			sum.IsOpen = true
			sum.Hours = wh.OpenTime + " - " + wh.CloseTime
		}
		out = append(out, sum)
	}
	return out
}

func (s *Schedule) Days() []models.WorkingHours {
	out := make([]models.WorkingHours, 0, len(s.days))
	for _, wh := range s.days {
		out = append(out, wh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out
}
