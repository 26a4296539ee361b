package vfx

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

// Interpolation maps a progress value a in [0, 1] onto a curve.
type Interpolation func(a float32) float32

// Apply interpolates between start and end.
func (f Interpolation) Apply(start, end, a float32) float32 {
	return start + (end-start)*f(a)
}

// Curves.
var (
	Linear Interpolation = func(a float32) float32 { return a }

	Smooth Interpolation = func(a float32) float32 { return a * a * (3 - 2*a) }

	Smooth2 Interpolation = func(a float32) float32 {
		a = a * a * (3 - 2*a)
		return a * a * (3 - 2*a)
	}

	Pow2    = pow(2)
	Pow2In  = powIn(2)
	Pow2Out = powOut(2)
	Pow3    = pow(3)
	Pow3In  = powIn(3)
	Pow3Out = powOut(3)
	Pow4    = pow(4)
	Pow4In  = powIn(4)
	Pow4Out = powOut(4)
	Pow5    = pow(5)
	Pow5In  = powIn(5)
	Pow5Out = powOut(5)

	Sine Interpolation = func(a float32) float32 {
		return (1 - math32.Cos(a*math32.Pi)) / 2
	}
	SineIn Interpolation = func(a float32) float32 {
		return 1 - math32.Cos(a*math32.Pi/2)
	}
	SineOut Interpolation = func(a float32) float32 {
		return math32.Sin(a * math32.Pi / 2)
	}

	Circle Interpolation = func(a float32) float32 {
		if a <= 0.5 {
			a *= 2
			return (1 - math32.Sqrt(1-a*a)) / 2
		}
		a--
		a *= 2
		return (math32.Sqrt(1-a*a) + 1) / 2
	}
	CircleIn Interpolation = func(a float32) float32 {
		return 1 - math32.Sqrt(1-a*a)
	}
	CircleOut Interpolation = func(a float32) float32 {
		a--
		return math32.Sqrt(1 - a*a)
	}
)

// pow eases in for the first half and out for the second.
func pow(power int) Interpolation {
	sign := oddSign(power)
	return func(a float32) float32 {
		if a <= 0.5 {
			return ipow(a*2, power) / 2
		}
		return ipow((a-1)*2, power)/(sign*2) + 1
	}
}

func powIn(power int) Interpolation {
	return func(a float32) float32 {
		return ipow(a, power)
	}
}

func powOut(power int) Interpolation {
	sign := oddSign(power)
	return func(a float32) float32 {
		return ipow(a-1, power)*sign + 1
	}
}

// oddSign is 1 for odd powers and -1 for even ones.
func oddSign(power int) float32 {
	if power%2 == 0 {
		return -1
	}
	return 1
}

// ipow raises a to a small positive integer power. Negative bases are fine.
func ipow(a float32, n int) float32 {
	r := float32(1)
	for ; n > 0; n-- {
		r *= a
	}
	return r
}

var interpolations = map[string]Interpolation{
	"linear":    Linear,
	"smooth":    Smooth,
	"smooth2":   Smooth2,
	"pow2":      Pow2,
	"pow2In":    Pow2In,
	"pow2Out":   Pow2Out,
	"pow3":      Pow3,
	"pow3In":    Pow3In,
	"pow3Out":   Pow3Out,
	"pow4":      Pow4,
	"pow4In":    Pow4In,
	"pow4Out":   Pow4Out,
	"pow5":      Pow5,
	"pow5In":    Pow5In,
	"pow5Out":   Pow5Out,
	"sine":      Sine,
	"sineIn":    SineIn,
	"sineOut":   SineOut,
	"circle":    Circle,
	"circleIn":  CircleIn,
	"circleOut": CircleOut,
}

// LookupInterpolation returns the curve registered under name.
func LookupInterpolation(name string) (Interpolation, error) {
	f, ok := interpolations[name]
	if !ok {
		return nil, fmt.Errorf("unknown interpolation %q", name)
	}
	return f, nil
}

// InterpolationNames returns the registered curve names, sorted.
func InterpolationNames() []string {
	names := make([]string, 0, len(interpolations))
	for name := range interpolations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
