package soil_test

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/soilq/soilq-api/soil"
)

func measurementGen() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 200),
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 14),
		gen.Float64Range(0, 100),
	).Map(func(vals []interface{}) soil.Measurement {
		return soil.Measurement{
			Nitrogen:   vals[0].(float64),
			Phosphorus: vals[1].(float64),
			Potassium:  vals[2].(float64),
			PH:         vals[3].(float64),
			Moisture:   vals[4].(float64),
		}
	})
}

// TestAssessProperties checks the engine's guarantees over the valid input domain.
func TestAssessProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("status is always one of the four labels", prop.ForAll(
		func(m soil.Measurement) bool {
			return soil.Assess(m).Status.Valid()
		},
		measurementGen(),
	))

	properties.Property("crop suggestions are never empty", prop.ForAll(
		func(m soil.Measurement) bool {
			return len(soil.Assess(m).CropSuggestions) > 0
		},
		measurementGen(),
	))

	properties.Property("pH and moisture never score below 2", prop.ForAll(
		func(m soil.Measurement) bool {
			s := soil.Score(m)
			return s.PH >= 2 && s.Moisture >= 2
		},
		measurementGen(),
	))

	properties.Property("average stays within the reachable range", prop.ForAll(
		func(m soil.Measurement) bool {
			avg := soil.Assess(m).Average
			return avg >= 1.4 && avg <= 4
		},
		measurementGen(),
	))

	properties.Property("assessment is deterministic", prop.ForAll(
		func(m soil.Measurement) bool {
			return reflect.DeepEqual(soil.Assess(m), soil.Assess(m))
		},
		measurementGen(),
	))

	properties.TestingRun(t)
}
