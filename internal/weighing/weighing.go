// Package weighing computes how much solvent turns a weighed reference
// standard into a solution of a target concentration, in either
// mass-per-volume (mg/L) or mass-per-mass (mg/kg) terms.
package weighing

import (
	"math"

	"github.com/JaimeStill/pestilab/pkg/formatting"
)

// Mode selects the concentration basis.
type Mode string

const (
	// MassPerVolume targets mg/L (w/v).
	MassPerVolume Mode = "mass_per_volume"
	// MassPerMass targets mg/kg (w/w).
	MassPerMass Mode = "mass_per_mass"
)

// DefaultTolerancePct is the deviation beyond which a preparation is flagged.
const DefaultTolerancePct = 1.0

// Input holds one set of weighing parameters.
type Input struct {
	WeighedAmountMg      float64 `json:"weighed_amount_mg"`
	PurityPct            float64 `json:"purity_pct"`
	TargetConcentration  float64 `json:"target_concentration"`
	Mode                 Mode    `json:"mode"`
	TemperatureC         float64 `json:"temperature_c"`
	SolventDensityGPerMl float64 `json:"solvent_density_g_per_ml"`
}

// Result is derived wholesale from an Input and never updated in place.
type Result struct {
	RequiredVolumeMl    float64 `json:"required_volume_ml"`
	RequiredMassG       float64 `json:"required_mass_g"`
	ActualConcentration float64 `json:"actual_concentration"`
	DeviationPct        float64 `json:"deviation_pct"`
}

// Display is a Result rounded for presentation.
type Display struct {
	RequiredVolumeMl    string `json:"required_volume_ml"`
	RequiredMassG       string `json:"required_mass_g"`
	ActualConcentration string `json:"actual_concentration"`
	DeviationPct        string `json:"deviation_pct"`
}

// Valid reports whether in can produce a result: every value finite, the
// weighed amount, target, and density positive, purity in (0, 100], and a
// known mode. Temperature may be zero or negative.
func (in Input) Valid() bool {
	for _, v := range []float64{
		in.WeighedAmountMg,
		in.PurityPct,
		in.TargetConcentration,
		in.TemperatureC,
		in.SolventDensityGPerMl,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	if in.WeighedAmountMg <= 0 || in.TargetConcentration <= 0 || in.SolventDensityGPerMl <= 0 {
		return false
	}
	if in.PurityPct <= 0 || in.PurityPct > 100 {
		return false
	}
	return in.Mode == MassPerVolume || in.Mode == MassPerMass
}

// Compute derives the preparation for in. ok is false when in is invalid or
// the arithmetic would not produce finite values; callers withhold the
// result in that case.
func Compute(in Input) (Result, bool) {
	if !in.Valid() {
		return Result{}, false
	}

	actualMass := in.WeighedAmountMg * (in.PurityPct / 100)
	target := in.TargetConcentration

	var r Result
	switch in.Mode {
	case MassPerVolume:
		r.RequiredVolumeMl = actualMass / (target / 1000)
		r.RequiredMassG = r.RequiredVolumeMl * in.SolventDensityGPerMl
		r.ActualConcentration = (actualMass / r.RequiredVolumeMl) * 1000
	case MassPerMass:
		actualMassG := actualMass / 1000
		targetFraction := target / 1_000_000
		totalMassG := actualMassG / targetFraction
		r.RequiredMassG = totalMassG - actualMassG
		r.RequiredVolumeMl = r.RequiredMassG / in.SolventDensityGPerMl
		r.ActualConcentration = (actualMassG / totalMassG) * 1_000_000
	}
	r.DeviationPct = (r.ActualConcentration - target) / target * 100

	for _, v := range []float64{r.RequiredVolumeMl, r.RequiredMassG, r.ActualConcentration, r.DeviationPct} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, false
		}
	}
	return r, true
}

// Display rounds r for presentation: volume, mass, and concentration to
// three decimals and deviation to two.
func (r Result) Display() Display {
	return Display{
		RequiredVolumeMl:    formatting.FormatFixed(r.RequiredVolumeMl, 3),
		RequiredMassG:       formatting.FormatFixed(r.RequiredMassG, 3),
		ActualConcentration: formatting.FormatFixed(r.ActualConcentration, 3),
		DeviationPct:        formatting.FormatFixed(r.DeviationPct, 2),
	}
}

// Deviates reports whether |DeviationPct| exceeds tolerancePct.
func (r Result) Deviates(tolerancePct float64) bool {
	return math.Abs(r.DeviationPct) > tolerancePct
}

// Unit returns the concentration unit for m.
func (m Mode) Unit() string {
	if m == MassPerMass {
		return "mg/kg"
	}
	return "mg/L"
}
