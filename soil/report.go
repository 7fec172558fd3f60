package soil

import (
	"regexp"
	"strconv"
)

// ReportValues holds the measurements found in a lab report. A nil field
// means the report did not mention that parameter.
type ReportValues struct {
	Nitrogen   *float64 `json:"nitrogen"`
	Phosphorus *float64 `json:"phosphorus"`
	Potassium  *float64 `json:"potassium"`
	PH         *float64 `json:"ph"`
	Moisture   *float64 `json:"moisture"`
}

// Complete reports whether all five parameters were found.
func (v ReportValues) Complete() bool {
	return v.Nitrogen != nil && v.Phosphorus != nil && v.Potassium != nil &&
		v.PH != nil && v.Moisture != nil
}

// Measurement converts complete values into a Measurement. ok is false when
// any parameter is missing.
func (v ReportValues) Measurement() (m Measurement, ok bool) {
	if !v.Complete() {
		return Measurement{}, false
	}
	return Measurement{
		Nitrogen:   *v.Nitrogen,
		Phosphorus: *v.Phosphorus,
		Potassium:  *v.Potassium,
		PH:         *v.PH,
		Moisture:   *v.Moisture,
	}, true
}

const number = `(\d+(?:\.\d+)?)`

// label, then an optional "(unit)" or "(K2O)", then a short run of
// separator text before the number.
func longLabel(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + name + `\b(?:\s*\([^)\n]*\))?[^\d\n]{0,16}?` + number)
}

// single-letter symbols must be followed by ':' or '=' to count.
func symbol(sym string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + sym + `\s*[:=]\s*` + number)
}

var reportPatterns = []struct {
	patterns []*regexp.Regexp
	set      func(*ReportValues, float64)
}{
	{
		patterns: []*regexp.Regexp{longLabel(`nitrogen`), symbol(`N`)},
		set:      func(v *ReportValues, f float64) { v.Nitrogen = &f },
	},
	{
		patterns: []*regexp.Regexp{longLabel(`phosph(?:orus|ate)`), symbol(`P`)},
		set:      func(v *ReportValues, f float64) { v.Phosphorus = &f },
	},
	{
		patterns: []*regexp.Regexp{longLabel(`potassium`), longLabel(`potash`), symbol(`K`)},
		set:      func(v *ReportValues, f float64) { v.Potassium = &f },
	},
	{
		patterns: []*regexp.Regexp{longLabel(`ph`)},
		set:      func(v *ReportValues, f float64) { v.PH = &f },
	},
	{
		patterns: []*regexp.Regexp{longLabel(`(?:soil\s+)?moisture`), longLabel(`water\s+content`)},
		set:      func(v *ReportValues, f float64) { v.Moisture = &f },
	},
}

// ParseReport extracts soil parameters from OCR text of a lab report. For
// each parameter the first matching label wins.
func ParseReport(text string) ReportValues {
	var values ReportValues

	for _, rp := range reportPatterns {
		for _, re := range rp.patterns {
			match := re.FindStringSubmatch(text)
			if match == nil {
				continue
			}
			f, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			rp.set(&values, f)
			break
		}
	}

	return values
}
