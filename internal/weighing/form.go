package weighing

import (
	"strings"

	"github.com/JaimeStill/pestilab/internal/density"
)

// Form is the weighing form as an operator fills it in. Values are kept as
// typed; Input converts them once every field parses.
type Form struct {
	WeighedAmount       Numeric `json:"weighed_amount"`
	WeighedUnit         string  `json:"weighed_unit,omitempty"`
	PurityPct           Numeric `json:"purity_pct"`
	TargetConcentration Numeric `json:"target_concentration"`
	Mode                string  `json:"mode"`
	Solvent             string  `json:"solvent,omitempty"`
	TemperatureC        Numeric `json:"temperature_c"`
	Density             Numeric `json:"solvent_density_g_per_ml"`
}

// Input converts f with density as the solvent density. ok is false while
// any field is missing or unparseable.
func (f Form) Input(solventDensity float64) (Input, bool) {
	amount, ok1 := f.WeighedAmount.Float()
	purity, ok2 := f.PurityPct.Float()
	target, ok3 := f.TargetConcentration.Float()
	temp, ok4 := f.TemperatureC.Float()
	mode, ok5 := ParseMode(f.Mode)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return Input{}, false
	}

	mg, err := ToMilligrams(amount, f.WeighedUnit)
	if err != nil {
		return Input{}, false
	}

	return Input{
		WeighedAmountMg:      mg,
		PurityPct:            purity,
		TargetConcentration:  target,
		Mode:                 mode,
		TemperatureC:         temp,
		SolventDensityGPerMl: solventDensity,
	}, true
}

// ExplicitDensity returns the density typed into the form, if any.
func (f Form) ExplicitDensity() (float64, bool) {
	d, ok := f.Density.Float()
	return d, ok && d > 0
}

// Merge overlays the fields present in patch.
func (f *Form) Merge(patch Form) {
	if patch.WeighedAmount.IsSet() {
		f.WeighedAmount = patch.WeighedAmount
	}
	if patch.WeighedUnit != "" {
		f.WeighedUnit = patch.WeighedUnit
	}
	if patch.PurityPct.IsSet() {
		f.PurityPct = patch.PurityPct
	}
	if patch.TargetConcentration.IsSet() {
		f.TargetConcentration = patch.TargetConcentration
	}
	if patch.Mode != "" {
		f.Mode = patch.Mode
	}
	if patch.Solvent != "" {
		f.Solvent = patch.Solvent
	}
	if patch.TemperatureC.IsSet() {
		f.TemperatureC = patch.TemperatureC
	}
	if patch.Density.IsSet() {
		f.Density = patch.Density
	}
}

// densityKey identifies the lookup a form needs; empty when it cannot be
// looked up yet.
func (f Form) densityKey() (solvent string, temp float64, ok bool) {
	solvent = strings.TrimSpace(f.Solvent)
	temp, tok := f.TemperatureC.Float()
	return solvent, temp, solvent != "" && tok
}

// Calculation is the outcome of evaluating a Form.
type Calculation struct {
	Input    *Input   `json:"input,omitempty"`
	Density  float64  `json:"solvent_density_g_per_ml"`
	Unit     string   `json:"unit,omitempty"`
	Result   *Result  `json:"result,omitempty"`
	Display  *Display `json:"display,omitempty"`
	Deviates bool     `json:"deviates"`
	Valid    bool     `json:"valid"`
}

// Evaluate computes the calculation for f at the given density. An invalid
// form yields a Calculation with Valid false and no result.
func Evaluate(f Form, solventDensity, tolerancePct float64) Calculation {
	calc := Calculation{Density: solventDensity}

	in, ok := f.Input(solventDensity)
	if !ok {
		return calc
	}
	calc.Input = &in
	calc.Unit = in.Mode.Unit()

	r, ok := Compute(in)
	if !ok {
		return calc
	}

	d := r.Display()
	calc.Result = &r
	calc.Display = &d
	calc.Deviates = r.Deviates(tolerancePct)
	calc.Valid = true
	return calc
}

// resolveDensity picks the explicit density from f, else looks it up, else
// falls back.
func resolveDensity(f Form, lookup func(solvent string, temp float64) float64) float64 {
	if d, ok := f.ExplicitDensity(); ok {
		return d
	}
	if solvent, temp, ok := f.densityKey(); ok && lookup != nil {
		return lookup(solvent, temp)
	}
	return density.Fallback
}
