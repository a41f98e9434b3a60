package readiness

import (
	"strings"
	"unicode"
)

// Zone is a body region tracked by the recovery model.
type Zone string

const (
	ZoneChest     Zone = "chest"
	ZoneBack      Zone = "back"
	ZoneShoulders Zone = "shoulders"
	ZoneArms      Zone = "arms"
	ZoneCore      Zone = "core"
	ZoneLegs      Zone = "legs"
	ZoneCardio    Zone = "cardio"
)

// Zones lists every tracked zone in display order.
var Zones = []Zone{ZoneChest, ZoneBack, ZoneShoulders, ZoneArms, ZoneCore, ZoneLegs, ZoneCardio}

// ParseZone maps a muscle group label onto a zone.
func ParseZone(raw string) (Zone, bool) {
	switch normalize(raw) {
	case "chest", "pecs", "pectorals":
		return ZoneChest, true
	case "back", "lats", "upper back", "lower back", "traps":
		return ZoneBack, true
	case "shoulders", "shoulder", "delts", "deltoids":
		return ZoneShoulders, true
	case "arms", "biceps", "triceps", "forearms":
		return ZoneArms, true
	case "core", "abs", "abdominals", "obliques":
		return ZoneCore, true
	case "legs", "quads", "quadriceps", "hamstrings", "glutes", "calves":
		return ZoneLegs, true
	case "cardio", "conditioning", "full body", "fullbody":
		return ZoneCardio, true
	default:
		return "", false
	}
}

// Weight is the share of a load a zone receives.
type Weight struct {
	Zone  Zone
	Coeff float64
}

const (
	primaryCoeff   = 1.0
	secondaryCoeff = 0.5
)

type exerciseMapping struct {
	name      string
	primary   Zone
	secondary []Zone
	aliases   []string
}

var abbreviations = map[string]string{
	"db":   "dumbbell",
	"bb":   "barbell",
	"kb":   "kettlebell",
	"ohp":  "overhead press",
	"rdl":  "romanian deadlift",
	"sldl": "stiff leg deadlift",
	"incl": "incline",
	"ext":  "extension",
}

var exerciseCatalog = []exerciseMapping{
	{name: "bench press", primary: ZoneChest, secondary: []Zone{ZoneArms, ZoneShoulders}, aliases: []string{"flat bench", "barbell bench press", "chest press"}},
	{name: "incline bench press", primary: ZoneChest, secondary: []Zone{ZoneShoulders, ZoneArms}, aliases: []string{"incline press", "incline dumbbell press"}},
	{name: "dumbbell bench press", primary: ZoneChest, secondary: []Zone{ZoneArms, ZoneShoulders}, aliases: []string{"dumbbell press"}},
	{name: "chest fly", primary: ZoneChest, secondary: []Zone{ZoneShoulders}, aliases: []string{"dumbbell fly", "pec fly", "cable fly", "cable crossover"}},
	{name: "push up", primary: ZoneChest, secondary: []Zone{ZoneArms, ZoneShoulders}, aliases: []string{"pushup", "press up"}},
	{name: "dip", primary: ZoneChest, secondary: []Zone{ZoneArms, ZoneShoulders}, aliases: []string{"dips", "chest dip"}},
	{name: "deadlift", primary: ZoneBack, secondary: []Zone{ZoneLegs}, aliases: []string{"conventional deadlift", "barbell deadlift"}},
	{name: "romanian deadlift", primary: ZoneLegs, secondary: []Zone{ZoneBack}, aliases: []string{"stiff leg deadlift"}},
	{name: "pull up", primary: ZoneBack, secondary: []Zone{ZoneArms}, aliases: []string{"pullup", "chin up", "chinup"}},
	{name: "lat pulldown", primary: ZoneBack, secondary: []Zone{ZoneArms}, aliases: []string{"lat pull down", "pulldown"}},
	{name: "bent over row", primary: ZoneBack, secondary: []Zone{ZoneArms}, aliases: []string{"barbell row", "dumbbell row", "cable row", "seated row"}},
	{name: "overhead press", primary: ZoneShoulders, secondary: []Zone{ZoneArms}, aliases: []string{"military press", "shoulder press", "barbell overhead press"}},
	{name: "lateral raise", primary: ZoneShoulders, aliases: []string{"side raise", "dumbbell lateral raise"}},
	{name: "face pull", primary: ZoneShoulders, secondary: []Zone{ZoneBack}},
	{name: "bicep curl", primary: ZoneArms, aliases: []string{"biceps curl", "barbell curl", "dumbbell curl", "hammer curl"}},
	{name: "tricep extension", primary: ZoneArms, aliases: []string{"triceps extension", "skull crusher", "tricep pushdown"}},
	{name: "squat", primary: ZoneLegs, secondary: []Zone{ZoneCore, ZoneBack}, aliases: []string{"back squat", "barbell squat", "front squat", "goblet squat"}},
	{name: "leg press", primary: ZoneLegs},
	{name: "lunge", primary: ZoneLegs, secondary: []Zone{ZoneCore}, aliases: []string{"lunges", "walking lunge", "split squat", "bulgarian split squat"}},
	{name: "hip thrust", primary: ZoneLegs, aliases: []string{"glute bridge"}},
	{name: "leg curl", primary: ZoneLegs, aliases: []string{"hamstring curl", "leg extension", "calf raise"}},
	{name: "plank", primary: ZoneCore, aliases: []string{"side plank"}},
	{name: "crunch", primary: ZoneCore, aliases: []string{"crunches", "sit up", "situp", "ab wheel", "hanging leg raise"}},
	{name: "russian twist", primary: ZoneCore},
	{name: "kettlebell swing", primary: ZoneLegs, secondary: []Zone{ZoneBack, ZoneCardio}},
	{name: "burpee", primary: ZoneCardio, secondary: []Zone{ZoneLegs, ZoneChest}, aliases: []string{"burpees"}},
	{name: "rowing", primary: ZoneCardio, secondary: []Zone{ZoneBack, ZoneLegs}, aliases: []string{"row erg", "erg"}},
}

// keywords classify names that miss the catalog, checked in order.
var keywords = []struct {
	word string
	zone Zone
}{
	{"bench", ZoneChest},
	{"chest", ZoneChest},
	{"fly", ZoneChest},
	{"row", ZoneBack},
	{"pull", ZoneBack},
	{"deadlift", ZoneBack},
	{"shoulder", ZoneShoulders},
	{"overhead", ZoneShoulders},
	{"raise", ZoneShoulders},
	{"curl", ZoneArms},
	{"tricep", ZoneArms},
	{"bicep", ZoneArms},
	{"squat", ZoneLegs},
	{"lunge", ZoneLegs},
	{"leg", ZoneLegs},
	{"calf", ZoneLegs},
	{"glute", ZoneLegs},
	{"plank", ZoneCore},
	{"crunch", ZoneCore},
	{"ab", ZoneCore},
	{"core", ZoneCore},
	{"run", ZoneCardio},
	{"bike", ZoneCardio},
	{"cardio", ZoneCardio},
}

var exerciseIndex map[string]*exerciseMapping

func init() {
	exerciseIndex = make(map[string]*exerciseMapping, len(exerciseCatalog)*3)
	for i := range exerciseCatalog {
		ex := &exerciseCatalog[i]
		exerciseIndex[normalize(ex.name)] = ex
		for _, alias := range ex.aliases {
			exerciseIndex[normalize(alias)] = ex
		}
	}
}

// Classify returns the zone weights for an exercise name, or nil when unknown.
func Classify(name string) []Weight {
	n := normalize(name)
	if n == "" {
		return nil
	}
	if ex, ok := exerciseIndex[n]; ok {
		return ex.weights()
	}
	if expanded := expandAbbreviations(n); expanded != n {
		if ex, ok := exerciseIndex[expanded]; ok {
			return ex.weights()
		}
		n = expanded
	}
	for _, word := range strings.Fields(n) {
		for _, kw := range keywords {
			if strings.HasPrefix(word, kw.word) {
				return []Weight{{Zone: kw.zone, Coeff: primaryCoeff}}
			}
		}
	}
	return nil
}

func (m *exerciseMapping) weights() []Weight {
	out := make([]Weight, 0, len(m.secondary)+1)
	out = append(out, Weight{Zone: m.primary, Coeff: primaryCoeff})
	for _, z := range m.secondary {
		out = append(out, Weight{Zone: z, Coeff: secondaryCoeff})
	}
	return out
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func expandAbbreviations(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}
