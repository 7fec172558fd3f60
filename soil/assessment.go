// Package soil scores soil-test measurements and turns them into a quality
// status, advisory recommendations, and crop suggestions.
package soil

// Status is the categorical soil-quality label derived from the average score.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusFair      Status = "fair"
	StatusPoor      Status = "poor"
)

// Advisory texts, emitted in this order when their rule fires.
const (
	AdviceAcidic       = "Soil is acidic. Consider adding lime to increase pH"
	AdviceAlkaline     = "Soil is alkaline. Consider adding sulfur to decrease pH"
	AdviceLowNitrogen  = "Low nitrogen levels. Consider nitrogen-rich fertilizers"
	AdviceLowPhosphate = "Low phosphorus levels. Consider phosphate fertilizers"
	AdviceLowPotassium = "Low potassium levels. Consider potash fertilizers"
	AdviceLowMoisture  = "Low soil moisture. Increase irrigation frequency"
	AdviceHighMoisture = "High soil moisture. Improve drainage to prevent root rot"
)

var (
	cerealCrops   = []string{"Rice", "Wheat", "Corn"}
	solanaceous   = []string{"Tomatoes", "Potatoes", "Peppers"}
	legumeCrops   = []string{"Beans", "Peas", "Lentils"}
	leafyCrops    = []string{"Leafy Greens", "Cabbage", "Lettuce"}
	fallbackCrops = []string{"Millet", "Sorghum"}
)

// Measurement is one soil test. Nutrients are in mg/kg, moisture in percent.
type Measurement struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	PH         float64 `json:"ph"`
	Moisture   float64 `json:"moisture"`
}

// Scores holds the per-parameter 1-4 scores that feed the average.
type Scores struct {
	Nitrogen   int `json:"nitrogen"`
	Phosphorus int `json:"phosphorus"`
	Potassium  int `json:"potassium"`
	PH         int `json:"ph"`
	Moisture   int `json:"moisture"`
}

// Sum returns the total of the five scores.
func (s Scores) Sum() int {
	return s.Nitrogen + s.Phosphorus + s.Potassium + s.PH + s.Moisture
}

// Assessment is the engine output for a single measurement.
type Assessment struct {
	Status          Status   `json:"status"`
	Recommendations []string `json:"recommendations"`
	CropSuggestions []string `json:"crop_suggestions"`
	Scores          Scores   `json:"scores"`
	Average         float64  `json:"average"`
}

// Assess runs the scoring rules over m. It does no range validation: out of
// range values are scored as given, and NaN fails every comparison.
func Assess(m Measurement) Assessment {
	scores := Score(m)
	avg := float64(scores.Sum()) / 5

	return Assessment{
		Status:          statusFor(avg),
		Recommendations: Recommend(m),
		CropSuggestions: SuggestCrops(m),
		Scores:          scores,
		Average:         avg,
	}
}

// Recommend returns the advisories that apply to m, possibly none.
func Recommend(m Measurement) []string {
	recs := []string{}

	if m.PH < 6.0 {
		recs = append(recs, AdviceAcidic)
	}
	if m.PH > 8.0 {
		recs = append(recs, AdviceAlkaline)
	}
	if m.Nitrogen < 20 {
		recs = append(recs, AdviceLowNitrogen)
	}
	if m.Phosphorus < 15 {
		recs = append(recs, AdviceLowPhosphate)
	}
	if m.Potassium < 150 {
		recs = append(recs, AdviceLowPotassium)
	}
	if m.Moisture < 20 {
		recs = append(recs, AdviceLowMoisture)
	}
	if m.Moisture > 80 {
		recs = append(recs, AdviceHighMoisture)
	}

	return recs
}

// Score computes the per-parameter scores. pH and moisture bottom out at 2.
func Score(m Measurement) Scores {
	return Scores{
		Nitrogen:   tiered(m.Nitrogen, 40, 20, 10),
		Phosphorus: tiered(m.Phosphorus, 25, 15, 8),
		Potassium:  tiered(m.Potassium, 200, 150, 100),
		PH:         banded(m.PH, 6.0, 7.5, 5.5, 8.0),
		Moisture:   banded(m.Moisture, 40, 70, 20, 80),
	}
}

// SuggestCrops concatenates the crops of every matching rule, falling back
// to hardy crops when nothing matched. Duplicates are kept.
func SuggestCrops(m Measurement) []string {
	crops := []string{}

	if between(m.PH, 6.0, 7.0) && m.Nitrogen >= 25 && m.Phosphorus >= 15 {
		crops = append(crops, cerealCrops...)
	}
	if between(m.PH, 5.5, 6.5) && m.Potassium >= 150 {
		crops = append(crops, solanaceous...)
	}
	if between(m.PH, 6.5, 7.5) {
		crops = append(crops, legumeCrops...)
	}
	if m.Moisture >= 60 && m.Nitrogen >= 30 {
		crops = append(crops, leafyCrops...)
	}

	if len(crops) == 0 {
		crops = append(crops, fallbackCrops...)
	}
	return crops
}

// statusFor maps an unrounded average score onto a Status.
func statusFor(avg float64) Status {
	switch {
	case avg >= 3.5:
		return StatusExcellent
	case avg >= 2.5:
		return StatusGood
	case avg >= 1.5:
		return StatusFair
	default:
		return StatusPoor
	}
}

func tiered(v, high, mid, low float64) int {
	switch {
	case v >= high:
		return 4
	case v >= mid:
		return 3
	case v >= low:
		return 2
	default:
		return 1
	}
}

func banded(v, idealLo, idealHi, okLo, okHi float64) int {
	switch {
	case between(v, idealLo, idealHi):
		return 4
	case between(v, okLo, okHi):
		return 3
	default:
		return 2
	}
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusExcellent, StatusGood, StatusFair, StatusPoor:
		return true
	}
	return false
}
