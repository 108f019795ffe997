package billing

import (
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/entity/tariff"
	"fmt"
	"sort"
	"time"
)

// Split the outcome of partitioning one session into charging periods
type Split struct {
	Start           time.Time
	End             time.Time
	Periods         []*cdr.ChargingPeriod
	Costs           Costs
	TotalEnergyWh   float64
	ChargingSeconds float64
	ParkingSeconds  float64
	Warnings        []string
}

func (s *Split) warn(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Splitter partitions metering values into charging periods, restrictions
// are evaluated in the given time zone
type Splitter struct {
	location *time.Location
}

func NewSplitter(location *time.Location) *Splitter {
	if location == nil {
		location = time.UTC
	}
	return &Splitter{location: location}
}

type point struct {
	at      time.Time
	wh      float64
	kind    entity.MeteringValueKind
	amperes *float64
}

// cut a sub-interval boundary; kwh is kept apart from wh so a threshold
// crossing carries the configured value exactly
type cut struct {
	at  time.Time
	wh  float64
	kwh float64
}

type elementKey struct {
	tariff  int
	element int
}

var noElement = elementKey{tariff: -1, element: -1}

type span struct {
	start       time.Time
	key         elementKey
	tariff      *tariff.Tariff
	element     *tariff.Element
	chargeFlat  bool
	energyWh    float64
	chargingSec float64
	parkingSec  float64
	minCurrent  *float64
	maxCurrent  *float64
}

func (p *span) observe(amperes *float64) {
	if amperes == nil {
		return
	}
	if p.minCurrent == nil || *amperes < *p.minCurrent {
		v := *amperes
		p.minCurrent = &v
	}
	if p.maxCurrent == nil || *amperes > *p.maxCurrent {
		v := *amperes
		p.maxCurrent = &v
	}
}

// Split walks the metering values pairwise and opens a new period on every TariffChange
// value and whenever the active tariff element changes; the first matching element of
// the first matching tariff wins
func (s *Splitter) Split(values []entity.EnergyMeteringValue, tariffs []*tariff.Tariff, start, end time.Time) (*Split, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("%w: %d metering values, at least 2 required", ErrInsufficientData, len(values))
	}
	split := &Split{}
	points, err := s.points(values, start, end, split)
	if err != nil {
		return nil, err
	}
	origin := split.Start

	var current *span
	// energy and TariffChange markers of zero-length intervals seen before the first period
	var pendingWh float64
	pendingChange := false
	for i := 0; i < len(points)-1; i++ {
		a, z := points[i], points[i+1]
		if !z.at.After(a.at) {
			if current != nil {
				current.energyWh += z.wh - a.wh
			} else {
				pendingWh += z.wh - a.wh
			}
			pendingChange = pendingChange || a.kind == entity.MeteringTariffChange
			continue
		}
		charging := z.wh > a.wh
		power := (z.wh - a.wh) / whPerKwh / z.at.Sub(a.at).Hours()
		amperes := a.amperes
		if amperes == nil {
			amperes = z.amperes
		}

		cuts := s.cuts(a, z, tariffs, origin)
		for j := 0; j < len(cuts)-1; j++ {
			from, to := cuts[j], cuts[j+1]
			ctx := MatchContext{
				Instant:       from.at.In(s.location),
				CumulativeKwh: from.kwh,
				PowerKw:       power,
				CurrentA:      amperes,
				Duration:      from.at.Sub(origin),
			}
			key, t, element := active(tariffs, ctx)
			tariffChange := j == 0 && (a.kind == entity.MeteringTariffChange || pendingChange)
			if current == nil || key != current.key || tariffChange {
				chargeFlat := current == nil || key != current.key
				if current != nil {
					s.close(current, split)
				}
				current = &span{
					start:      from.at,
					key:        key,
					tariff:     t,
					element:    element,
					chargeFlat: chargeFlat,
				}
				if element == nil {
					split.warn("no tariff element applies at %s, period is not priced", from.at.Format(time.RFC3339))
				}
			}
			if j == 0 {
				current.energyWh += pendingWh
				pendingWh, pendingChange = 0, false
			}
			seconds := to.at.Sub(from.at).Seconds()
			current.energyWh += to.wh - from.wh
			if charging {
				current.chargingSec += seconds
			} else {
				current.parkingSec += seconds
			}
			current.observe(amperes)
		}
	}
	if current != nil {
		s.close(current, split)
	}
	return split, nil
}

// points turns metering values into cumulative energy points covering
// [min(start, first value), max(end, last value))
func (s *Splitter) points(values []entity.EnergyMeteringValue, start, end time.Time, split *Split) ([]point, error) {
	for i := 1; i < len(values); i++ {
		if values[i].Timestamp.Before(values[i-1].Timestamp) {
			return nil, fmt.Errorf("%w: value %d at %s precedes %s", ErrInvalidOrdering, i,
				values[i].Timestamp.Format(time.RFC3339), values[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	first, last := values[0].Timestamp, values[len(values)-1].Timestamp
	from, to := first, last
	if !start.IsZero() && start.Before(from) {
		from = start
	}
	if !end.IsZero() && end.After(to) {
		to = end
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: metering values span no time", ErrInsufficientData)
	}
	if (!start.IsZero() && first.Before(start)) || (!end.IsZero() && last.After(end)) {
		split.warn("metering values from %s to %s lie outside the session window", first.Format(time.RFC3339), last.Format(time.RFC3339))
	}
	split.Start, split.End = from, to

	points := make([]point, 0, len(values)+2)
	if from.Before(first) {
		points = append(points, point{at: from})
	}
	var cumulative float64
	for i, v := range values {
		if i > 0 {
			delta := v.WattHours - values[i-1].WattHours
			if delta < 0 {
				split.warn("meter reading dropped from %.3f Wh to %.3f Wh at %s, counted as zero",
					values[i-1].WattHours, v.WattHours, v.Timestamp.Format(time.RFC3339))
				delta = 0
			}
			cumulative += delta
		}
		points = append(points, point{at: v.Timestamp, wh: cumulative, kind: v.Kind, amperes: v.Amperes})
	}
	if to.After(last) {
		points = append(points, point{at: to, wh: cumulative})
	}
	return points, nil
}

// cuts returns the boundaries of the sub-intervals of [a, z) at which some restriction
// may flip; energy between samples is interpolated linearly
func (s *Splitter) cuts(a, z point, tariffs []*tariff.Tariff, origin time.Time) []cut {
	length := z.at.Sub(a.at)
	delta := z.wh - a.wh
	cuts := []cut{{at: a.at, wh: a.wh, kwh: a.wh / whPerKwh}}
	inside := func(at time.Time) bool {
		return at.After(a.at) && at.Before(z.at)
	}
	add := func(at time.Time) {
		if inside(at) {
			wh := a.wh + delta*float64(at.Sub(a.at))/float64(length)
			cuts = append(cuts, cut{at: at, wh: wh, kwh: wh / whPerKwh})
		}
	}

	byWeekday := false
	for _, t := range tariffs {
		if t == nil {
			continue
		}
		for _, element := range t.Elements {
			if element == nil || element.Restrictions.IsEmpty() {
				continue
			}
			r := element.Restrictions
			for _, threshold := range []*float64{r.MinKwh, r.MaxKwh} {
				if threshold == nil || delta <= 0 {
					continue
				}
				wh := *threshold * whPerKwh
				if wh <= a.wh || wh >= z.wh {
					continue
				}
				at := a.at.Add(time.Duration(float64(length) * (wh - a.wh) / delta))
				if inside(at) {
					cuts = append(cuts, cut{at: at, wh: wh, kwh: *threshold})
				}
			}
			for _, seconds := range []*int{r.MinDuration, r.MaxDuration} {
				if seconds != nil {
					add(origin.Add(time.Duration(*seconds) * time.Second))
				}
			}
			for _, clock := range []string{r.StartTime, r.EndTime} {
				offset, ok := parseClock(clock)
				if clock == "" || !ok {
					continue
				}
				s.eachDay(a.at, z.at, func(day time.Time) {
					add(day.Add(time.Duration(offset) * time.Second))
				})
			}
			for _, date := range []string{r.StartDate, r.EndDate} {
				if date == "" {
					continue
				}
				if day, err := time.ParseInLocation(dateLayout, date, s.location); err == nil {
					add(day)
				}
			}
			if len(r.DayOfWeek) > 0 {
				byWeekday = true
			}
		}
	}
	if byWeekday {
		s.eachDay(a.at, z.at, add)
	}

	sort.SliceStable(cuts, func(i, j int) bool {
		return cuts[i].at.Before(cuts[j].at)
	})
	unique := cuts[:1]
	for _, c := range cuts[1:] {
		if c.at.After(unique[len(unique)-1].at) {
			unique = append(unique, c)
		}
	}
	return append(unique, cut{at: z.at, wh: z.wh, kwh: z.wh / whPerKwh})
}

// eachDay calls fn with every local midnight from the day of from up to to
func (s *Splitter) eachDay(from, to time.Time, fn func(day time.Time)) {
	local := from.In(s.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	for !day.After(to) {
		fn(day)
		day = day.AddDate(0, 0, 1)
	}
}

func active(tariffs []*tariff.Tariff, ctx MatchContext) (elementKey, *tariff.Tariff, *tariff.Element) {
	for i, t := range tariffs {
		if t == nil {
			continue
		}
		for j, element := range t.Elements {
			if element != nil && Matches(element.Restrictions, ctx) {
				return elementKey{tariff: i, element: j}, t, element
			}
		}
	}
	return noElement, nil, nil
}

// close prices the span and appends it as a charging period; only the first
// component of each dimension in the element is applied
func (s *Splitter) close(p *span, split *Split) {
	period := &cdr.ChargingPeriod{
		StartDateTime: p.start,
		Dimensions: []*cdr.CdrDimension{
			{Type: cdr.Energy, Volume: p.energyWh / whPerKwh},
		},
	}
	if p.tariff != nil {
		period.TariffId = p.tariff.Id
	}
	if p.element != nil {
		seen := make(map[tariff.DimensionType]bool)
		for _, pc := range p.element.PriceComponents {
			if pc == nil || seen[pc.Type] {
				continue
			}
			seen[pc.Type] = true
			switch pc.Type {
			case tariff.Energy:
				split.Costs.Energy.add(Evaluate(pc, p.energyWh), pc.Vat)
			case tariff.Time:
				if p.chargingSec > 0 {
					period.Dimensions = append(period.Dimensions, &cdr.CdrDimension{Type: cdr.Time, Volume: p.chargingSec / secondsPerHour})
					split.Costs.Time.add(Evaluate(pc, p.chargingSec), pc.Vat)
				}
			case tariff.ParkingTime:
				if p.parkingSec > 0 {
					period.Dimensions = append(period.Dimensions, &cdr.CdrDimension{Type: cdr.ParkingTime, Volume: p.parkingSec / secondsPerHour})
					split.Costs.Parking.add(Evaluate(pc, p.parkingSec), pc.Vat)
				}
			case tariff.Flat:
				if p.chargeFlat {
					period.Dimensions = append(period.Dimensions, &cdr.CdrDimension{Type: cdr.Flat, Volume: 1})
					split.Costs.Fixed.add(Evaluate(pc, 0), pc.Vat)
				}
			}
		}
	}
	if p.maxCurrent != nil {
		period.Dimensions = append(period.Dimensions, &cdr.CdrDimension{Type: cdr.MaxCurrent, Volume: *p.maxCurrent})
	}
	if p.minCurrent != nil {
		period.Dimensions = append(period.Dimensions, &cdr.CdrDimension{Type: cdr.MinCurrent, Volume: *p.minCurrent})
	}
	split.Periods = append(split.Periods, period)
	split.TotalEnergyWh += p.energyWh
	split.ChargingSeconds += p.chargingSec
	split.ParkingSeconds += p.parkingSec
}
