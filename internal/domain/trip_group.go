package domain

// WeeklyTemplate is a recurring trip definition for one operational day.
type WeeklyTemplate struct {
	TemplateID   int
	CustomerID   int
	DayOfWeek    int
	Start        ClockTime
	End          ClockTime
	TankerID     *int
	FuelBlendID  *int
	VolumeLiters float64
	IsMobileOp   bool
	NeedsReturn  bool
	Priority     int
	Notes        string
	Lifecycle    Lifecycle
}

func (t *WeeklyTemplate) Interval() Interval {
	return Interval{Start: t.Start, End: t.End}
}

// TripGroup bundles templates that one driver covers for a whole week.
type TripGroup struct {
	GroupID     int
	Name        string
	Description string
	DayOfWeek   int
	Lifecycle   Lifecycle
	Templates   []*WeeklyTemplate
}

func (g *TripGroup) ActiveTemplates() []*WeeklyTemplate {
	out := make([]*WeeklyTemplate, 0, len(g.Templates))
	for _, t := range g.Templates {
		if t.Lifecycle.IsActive() {
			out = append(out, t)
		}
	}
	return out
}

// EarliestStart is the first start time across active templates.
// ok is false when the group has none.
func (g *TripGroup) EarliestStart() (start ClockTime, ok bool) {
	for _, t := range g.ActiveTemplates() {
		if !ok || t.Start < start {
			start, ok = t.Start, true
		}
	}
	return start, ok
}

func (g *TripGroup) LatestEnd() (end ClockTime, ok bool) {
	for _, t := range g.ActiveTemplates() {
		if !ok || t.End > end {
			end, ok = t.End, true
		}
	}
	return end, ok
}

func (g *TripGroup) TotalDurationMinutes() int {
	total := 0
	for _, t := range g.ActiveTemplates() {
		total += t.Interval().DurationMinutes()
	}
	return total
}

func (g *TripGroup) TotalVolume() float64 {
	total := 0.0
	for _, t := range g.ActiveTemplates() {
		total += t.VolumeLiters
	}
	return total
}
