package attrtable

import (
	"fmt"
	"math"
	"strings"

	"github.com/comalice/ravecore/internal/attribute"
)

// SpeedOfLight in m/s, used for the frequency/wavelength conversion.
const SpeedOfLight = 299792458.0

// rule translates one attribute between its external name and unit, as written
// at a revision, and its stored canonical form.
type rule struct {
	external  string
	canonical string
	format    attribute.Format
	gate      Revision
	forward   func(float64) float64 // external -> canonical; nil is identity
	inverse   func(float64) float64 // canonical -> external; nil is identity
}

func (r *rule) applies(rev Revision) bool {
	return r.gate == RevisionUndefined || rev >= r.gate
}

func scale(f float64) func(float64) float64 {
	return func(v float64) float64 { return v * f }
}

func divide(f float64) func(float64) float64 {
	return func(v float64) float64 { return v / f }
}

func dBmToKW(v float64) float64 {
	return math.Pow(10, (v-30)/10) / 1000
}

func kWToDBm(v float64) float64 {
	return 10*math.Log10(1000*v) + 30
}

func frequencyToWavelength(v float64) float64 {
	return SpeedOfLight / v * 100
}

func wavelengthToFrequency(v float64) float64 {
	return SpeedOfLight / (v / 100)
}

var rules = []rule{
	{external: "how/antspeed", canonical: "how/rpm", format: attribute.Double, gate: RevisionUndefined, forward: divide(6), inverse: scale(6)},
	{external: "how/SNR_threshold", canonical: "how/S2N", format: attribute.Double, gate: RevisionUndefined},
	{external: "how/startT", canonical: "how/startazT", format: attribute.DoubleArray, gate: RevisionUndefined},
	{external: "how/stopT", canonical: "how/stopazT", format: attribute.DoubleArray, gate: RevisionUndefined},
	{external: "how/frequency", canonical: "how/wavelength", format: attribute.Double, gate: RevisionUndefined, forward: frequencyToWavelength, inverse: wavelengthToFrequency},

	{external: "how/melting_layer_top", canonical: "how/_melting_layer_top", format: attribute.Double, gate: RevisionUnitChange},
	{external: "how/melting_layer_bottom", canonical: "how/_melting_layer_bottom", format: attribute.Double, gate: RevisionUnitChange},
	{external: "how/melting_layer_top_A", canonical: "how/melting_layer_top", format: attribute.DoubleArray, gate: RevisionUndefined, forward: scale(1000), inverse: divide(1000)},
	{external: "how/melting_layer_bottom_A", canonical: "how/melting_layer_bottom", format: attribute.DoubleArray, gate: RevisionUndefined, forward: scale(1000), inverse: divide(1000)},

	// dB/m -> dB/km
	{external: "how/gasattn", canonical: "how/gasattn", format: attribute.Double, gate: RevisionUnitChange, forward: scale(1000), inverse: divide(1000)},
	// m -> km
	{external: "how/minrange", canonical: "how/minrange", format: attribute.Double, gate: RevisionUnitChange, forward: divide(1000), inverse: scale(1000)},
	{external: "how/maxrange", canonical: "how/maxrange", format: attribute.Double, gate: RevisionUnitChange, forward: divide(1000), inverse: scale(1000)},
	{external: "how/radhoriz", canonical: "how/radhoriz", format: attribute.Double, gate: RevisionUnitChange, forward: divide(1000), inverse: scale(1000)},
	// dBm -> kW
	{external: "how/nomTXpower", canonical: "how/nomTXpower", format: attribute.Double, gate: RevisionUnitChange, forward: dBmToKW, inverse: kWToDBm},
	{external: "how/peakpwr", canonical: "how/peakpwr", format: attribute.Double, gate: RevisionUnitChange, forward: dBmToKW, inverse: kWToDBm},
	{external: "how/avgpwr", canonical: "how/avgpwr", format: attribute.Double, gate: RevisionUnitChange, forward: dBmToKW, inverse: kWToDBm},
	{external: "how/TXpower", canonical: "how/TXpower", format: attribute.DoubleArray, gate: RevisionUnitChange, forward: dBmToKW, inverse: kWToDBm},
	// s -> us
	{external: "how/pulsewidth", canonical: "how/pulsewidth", format: attribute.Double, gate: RevisionUnitChange, forward: scale(1e6), inverse: divide(1e6)},
	// Hz -> MHz
	{external: "how/RXbandwidth", canonical: "how/RXbandwidth", format: attribute.Double, gate: RevisionUnitChange, forward: divide(1e6), inverse: scale(1e6)},
}

// byExternal returns the first rule for name as written at rev.
func byExternal(name string, rev Revision) *rule {
	for i := range rules {
		if rules[i].applies(rev) && strings.EqualFold(rules[i].external, name) {
			return &rules[i]
		}
	}
	return nil
}

// byCanonical returns the first rule that presents the stored name at rev.
func byCanonical(name string, rev Revision) *rule {
	for i := range rules {
		if rules[i].applies(rev) && strings.EqualFold(rules[i].canonical, name) {
			return &rules[i]
		}
	}
	return nil
}

// convert returns a new attribute named name holding src's value passed
// through fn. src must have format f. A transform with a non-finite result,
// such as a power of 0 kW in dBm, fails with ErrUnrepresentable.
func convert(src *attribute.Attribute, name string, f attribute.Format, fn func(float64) float64) (*attribute.Attribute, error) {
	if fn == nil {
		fn = func(v float64) float64 { return v }
	}
	apply := func(v float64) (float64, error) {
		out := fn(v)
		if math.IsNaN(out) || math.IsInf(out, 0) {
			return 0, fmt.Errorf("%w: %s: %g", ErrUnrepresentable, name, v)
		}
		return out, nil
	}
	if f == attribute.DoubleArray {
		vals, err := src.DoubleArray()
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if vals[i], err = apply(v); err != nil {
				return nil, err
			}
		}
		return attribute.NewDoubleArray(name, vals)
	}
	v, err := src.Double()
	if err != nil {
		return nil, err
	}
	if v, err = apply(v); err != nil {
		return nil, err
	}
	return attribute.NewDouble(name, v)
}
