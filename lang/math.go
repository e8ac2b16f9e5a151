package lang

import (
	"maps"
	"math"
	"math/rand/v2"
	"slices"
)

// radian converts degrees to radians.
const radian = math.Pi / 180

// MathScope returns a read-only scope of math functions and constants.
// Every entry is constant. All functions are pure except random,
// random_integer, die_roll and die_roll_integer.
// Trigonometric functions work in degrees.
func MathScope() *Scope {
	s := NewScope()

	pure := map[string]any{
		"abs":           math.Abs,
		"acos":          func(x float64) float64 { return math.Acos(x) / radian },
		"asin":          func(x float64) float64 { return math.Asin(x) / radian },
		"atan":          func(x float64) float64 { return math.Atan(x) / radian },
		"atan2":         func(y, x float64) float64 { return math.Atan2(y, x) / radian },
		"ceil":          math.Ceil,
		"clamp":         clamp,
		"cos":           func(x float64) float64 { return math.Cos(x * radian) },
		"exp":           math.Exp,
		"floor":         math.Floor,
		"hermite_blend": func(t float64) float64 { return 3*t*t - 2*t*t*t },
		"lerp":          func(start, end, t float64) float64 { return start + t*(end-start) },
		"lerprotate":    lerpRotate,
		"ln":            math.Log,
		"max":           math.Max,
		"min":           math.Min,
		"min_angle":     minAngle,
		"mod":           math.Mod,
		"pow":           math.Pow,
		"round":         func(x float64) float64 { return math.Floor(x + 0.5) },
		"sin":           func(x float64) float64 { return math.Sin(x * radian) },
		"sqrt":          math.Sqrt,
		"trunc":         math.Trunc,
	}

	impure := map[string]any{
		"random":           random,
		"random_integer":   randomInteger,
		"die_roll":         dieRoll,
		"die_roll_integer": dieRollInteger,
	}

	for _, name := range slices.Sorted(maps.Keys(pure)) {
		s.SetConstant(name, MustHostFunction(name, pure[name], true))
	}

	for _, name := range slices.Sorted(maps.Keys(impure)) {
		s.SetConstant(name, MustHostFunction(name, impure[name], false))
	}

	s.SetConstant("pi", NumberOf(math.Pi))
	s.SetReadOnly(true)

	return s
}

func clamp(v, lo, hi float64) float64 { return math.Max(math.Min(v, hi), lo) }

// radify wraps an angle in degrees into [0, 360).
func radify(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// lerpRotate interpolates between two angles in degrees along the shortest
// arc.
func lerpRotate(start, end, t float64) float64 {
	start, end = radify(start), radify(end)
	if start > end {
		start, end = end, start
	}

	diff := end - start
	if diff > 180 {
		return radify(end + t*(360-diff))
	}

	return start + t*diff
}

// minAngle wraps an angle in degrees into [-180, 180]. Angles already in
// range, including both bounds, are returned unchanged.
func minAngle(deg float64) float64 {
	if deg >= -180 && deg <= 180 {
		return deg
	}

	deg = math.Mod(deg, 360)

	switch {
	case deg > 180:
		deg -= 360
	case deg < -180:
		deg += 360
	}

	return deg
}

// randInt returns a uniform integer in [lo, hi), or lo if the range is empty.
func randInt(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}

	return lo + rand.Int64N(hi-lo)
}

func random(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func randomInteger(lo, hi float64) float64 {
	return float64(randInt(int64(lo), int64(hi)))
}

// dieRoll sums amount rolls of a die with faces in [lo, hi).
func dieRoll(amount, lo, hi float64) float64 {
	sum := 0.0
	for range int(amount) {
		sum += random(lo, hi)
	}

	return sum
}

// dieRollInteger sums amount rolls of an integer die with faces in [lo, hi).
func dieRollInteger(amount, lo, hi float64) float64 {
	var sum int64
	for range int(amount) {
		sum += randInt(int64(lo), int64(hi))
	}

	return float64(sum)
}
