package entities

import (
	"errors"
	"fmt"
	"math"
)

// FingerCount is the number of entries in a finger extension mask
const FingerCount = 5

// Point3D is a normalized pose keyframe coordinate
type Point3D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// GestureDescriptor is the static metadata describing a gesture
type GestureDescriptor struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	PoseKeyframes   []Point3D         `json:"pose_keyframes"`
	FingerExtension [FingerCount]bool `json:"finger_extension"`
	DurationMs      int               `json:"duration_ms"`
}

// Validate checks the descriptor invariants
func (g GestureDescriptor) Validate() error {
	if g.Name == "" {
		return errors.New("gesture name is required")
	}
	if g.DurationMs <= 0 {
		return fmt.Errorf("gesture %q: duration must be positive, got %d", g.Name, g.DurationMs)
	}
	if len(g.PoseKeyframes) == 0 {
		return fmt.Errorf("gesture %q: at least one pose keyframe is required", g.Name)
	}
	for i, p := range g.PoseKeyframes {
		for _, v := range []float64{p.X, p.Y, p.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("gesture %q: keyframe %d is not finite", g.Name, i)
			}
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate catalog state
func (g GestureDescriptor) Clone() GestureDescriptor {
	out := g
	out.PoseKeyframes = append([]Point3D(nil), g.PoseKeyframes...)
	return out
}
