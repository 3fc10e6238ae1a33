package ui

import "math"

// Discrete multipliers offered for rate and pitch.
var defaultSteps = []float64{0.5, 0.65, 0.8, 1.0, 1.25, 1.5, 2.0}

// stepper moves a value through discrete steps.
type stepper struct {
	steps []float64
	index int
}

// newStepper starts at the step nearest to value.
func newStepper(value float64) stepper {
	s := stepper{steps: defaultSteps}
	s.set(value)
	return s
}

func (s *stepper) set(value float64) {
	best := math.MaxFloat64
	for i, step := range s.steps {
		if d := math.Abs(step - value); d < best {
			best, s.index = d, i
		}
	}
}

func (s stepper) value() float64 {
	return s.steps[s.index]
}

// next moves up one step and reports whether the value changed.
func (s *stepper) next() bool {
	if s.index >= len(s.steps)-1 {
		return false
	}
	s.index++
	return true
}

// prev moves down one step and reports whether the value changed.
func (s *stepper) prev() bool {
	if s.index <= 0 {
		return false
	}
	s.index--
	return true
}
