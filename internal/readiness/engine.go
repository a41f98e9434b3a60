// Package readiness estimates per-zone recovery from recent training history.
package readiness

import (
	"math"
	"time"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

const (
	defaultSets        = 3
	defaultRPE         = 6
	defaultDurationMin = 45

	maxExerciseLoad = 60.0
	maxSessionLoad  = 80.0

	// ReadyThreshold is the zone score at which training the zone is unrestricted.
	ReadyThreshold = 80
)

// recoveryWindows is how long a zone takes to shed a load completely.
var recoveryWindows = map[Zone]time.Duration{
	ZoneLegs:      72 * time.Hour,
	ZoneBack:      60 * time.Hour,
	ZoneChest:     60 * time.Hour,
	ZoneShoulders: 48 * time.Hour,
	ZoneArms:      48 * time.Hour,
	ZoneCore:      36 * time.Hour,
	ZoneCardio:    36 * time.Hour,
}

// LookbackWindow bounds the history Calculate needs.
const LookbackWindow = 72 * time.Hour

var disciplineProfiles = map[domain.Discipline][]Weight{
	domain.DisciplineRunning:  {{ZoneCardio, 1.0}, {ZoneLegs, 0.5}},
	domain.DisciplineCycling:  {{ZoneCardio, 1.0}, {ZoneLegs, 0.6}},
	domain.DisciplineSwimming: {{ZoneCardio, 1.0}, {ZoneShoulders, 0.5}, {ZoneBack, 0.5}},
	domain.DisciplineHIIT:     {{ZoneCardio, 0.8}, {ZoneLegs, 0.6}, {ZoneCore, 0.5}},
	domain.DisciplineYoga:     {{ZoneCore, 0.3}},
	domain.DisciplineStrength: {{ZoneLegs, 0.4}, {ZoneBack, 0.4}, {ZoneChest, 0.4}},
}

// Report is the outcome of a readiness calculation.
type Report struct {
	Overall      int          `json:"overall"`
	Zones        map[Zone]int `json:"zones"`
	MostFatigued Zone         `json:"most_fatigued,omitempty"`
	HoursToReady int          `json:"hours_to_ready"`
	Status       StatusInfo   `json:"status"`
	CalculatedAt time.Time    `json:"calculated_at"`
}

type load struct {
	zone   Zone
	amount float64
	at     time.Time
}

// Calculate scores every zone from the workouts relative to now.
func Calculate(workouts []domain.Workout, now time.Time) Report {
	loads := make([]load, 0, len(workouts)*2)
	for _, w := range workouts {
		loads = append(loads, workoutLoads(w)...)
	}

	zones := scoreAt(loads, now)
	report := Report{
		Zones:        zones,
		HoursToReady: hoursToReady(loads, now),
		CalculatedAt: now,
	}

	sum, lowest := 0, math.MaxInt
	for _, z := range Zones {
		score := zones[z]
		sum += score
		if score < lowest && score < 100 {
			lowest = score
			report.MostFatigued = z
		}
	}
	report.Overall = int(math.Round(float64(sum) / float64(len(Zones))))
	report.Status = Status(report.Overall)
	return report
}

func workoutLoads(w domain.Workout) []load {
	rpe := float64(w.RPE)
	if rpe <= 0 {
		rpe = defaultRPE
	}

	var out []load
	for _, ex := range w.Exercises {
		weights := Classify(ex.Name)
		if len(weights) == 0 {
			continue
		}
		sets := ex.Sets
		if sets <= 0 {
			sets = defaultSets
		}
		amount := math.Min(maxExerciseLoad, float64(sets)*4*rpe/6)
		for _, wt := range weights {
			out = append(out, load{zone: wt.Zone, amount: amount * wt.Coeff, at: w.Date})
		}
	}
	if len(out) > 0 {
		return out
	}

	weights := fallbackWeights(w)
	if len(weights) == 0 {
		return nil
	}
	duration := float64(w.DurationMin)
	if duration <= 0 {
		duration = defaultDurationMin
	}
	amount := math.Min(maxSessionLoad, duration*0.8*rpe/6)
	for _, wt := range weights {
		out = append(out, load{zone: wt.Zone, amount: amount * wt.Coeff, at: w.Date})
	}
	return out
}

func fallbackWeights(w domain.Workout) []Weight {
	var out []Weight
	seen := make(map[Zone]struct{})
	for _, mg := range w.MuscleGroups {
		z, ok := ParseZone(mg)
		if !ok {
			continue
		}
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		out = append(out, Weight{Zone: z, Coeff: 1.0})
	}
	if len(out) > 0 {
		return out
	}
	return disciplineProfiles[w.Discipline]
}

func remaining(l load, at time.Time) float64 {
	age := at.Sub(l.at)
	window := recoveryWindows[l.zone]
	if age < 0 || age >= window {
		return 0
	}
	return l.amount * (1 - float64(age)/float64(window))
}

func scoreAt(loads []load, at time.Time) map[Zone]int {
	fatigue := make(map[Zone]float64, len(Zones))
	for _, l := range loads {
		fatigue[l.zone] += remaining(l, at)
	}
	scores := make(map[Zone]int, len(Zones))
	for _, z := range Zones {
		scores[z] = clamp(int(math.Round(100-fatigue[z])), 0, 100)
	}
	return scores
}

// hoursToReady walks forward hour by hour until every zone reaches the ready threshold.
func hoursToReady(loads []load, now time.Time) int {
	limit := int(LookbackWindow / time.Hour)
	for h := 0; h <= limit; h++ {
		ready := true
		for _, score := range scoreAt(loads, now.Add(time.Duration(h)*time.Hour)) {
			if score < ReadyThreshold {
				ready = false
				break
			}
		}
		if ready {
			return h
		}
	}
	return limit
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
