package sign

import "github.com/satriahrh/isyarat/domain/entities"

var (
	allFingers = [entities.FingerCount]bool{true, true, true, true, true}
	noFingers  = [entities.FingerCount]bool{}
	thumbOnly  = [entities.FingerCount]bool{true, false, false, false, false}
	twoFingers = [entities.FingerCount]bool{true, true, false, false, false}
)

func wave() []entities.Point3D {
	return []entities.Point3D{
		{X: 0.3, Y: 0.5, Z: 0.1},
		{X: 0.7, Y: 0.5, Z: 0.1},
		{X: 0.5, Y: 0.5, Z: 0.1},
	}
}

// DefaultEntries is the built-in gesture table in enumeration order
func DefaultEntries() []Entry {
	return []Entry{
		{Key: "hi", Gesture: entities.GestureDescriptor{
			Name: "Hello", Description: "Wave hand from side to side",
			PoseKeyframes: wave(), FingerExtension: allFingers, DurationMs: 2000,
		}},
		{Key: "hello", Gesture: entities.GestureDescriptor{
			Name: "Hello", Description: "Wave hand from side to side",
			PoseKeyframes: wave(), FingerExtension: allFingers, DurationMs: 2000,
		}},
		{Key: "thank you", Gesture: entities.GestureDescriptor{
			Name: "Thank You", Description: "Touch chin with fingertips and move forward",
			PoseKeyframes: []entities.Point3D{
				{X: 0.5, Y: 0.3, Z: 0.2},
				{X: 0.5, Y: 0.4, Z: 0.1},
			},
			FingerExtension: allFingers, DurationMs: 1500,
		}},
		{Key: "please", Gesture: entities.GestureDescriptor{
			Name: "Please", Description: "Flat hand, palm up, moving in circular motion",
			PoseKeyframes: []entities.Point3D{
				{X: 0.5, Y: 0.6, Z: 0.1},
				{X: 0.6, Y: 0.5, Z: 0.1},
				{X: 0.4, Y: 0.5, Z: 0.1},
			},
			FingerExtension: allFingers, DurationMs: 1800,
		}},
		{Key: "yes", Gesture: entities.GestureDescriptor{
			Name: "Yes", Description: "Fist moving up and down",
			PoseKeyframes: []entities.Point3D{
				{X: 0.5, Y: 0.4, Z: 0.1},
				{X: 0.5, Y: 0.6, Z: 0.1},
				{X: 0.5, Y: 0.4, Z: 0.1},
			},
			FingerExtension: noFingers, DurationMs: 1200,
		}},
		{Key: "no", Gesture: entities.GestureDescriptor{
			Name: "No", Description: "Index and middle finger extended, moving side to side",
			PoseKeyframes: []entities.Point3D{
				{X: 0.3, Y: 0.5, Z: 0.1},
				{X: 0.7, Y: 0.5, Z: 0.1},
			},
			FingerExtension: twoFingers, DurationMs: 1000,
		}},
		{Key: "help", Gesture: entities.GestureDescriptor{
			Name: "Help", Description: "Thumb up with other hand supporting",
			PoseKeyframes: []entities.Point3D{
				{X: 0.4, Y: 0.5, Z: 0.1},
				{X: 0.6, Y: 0.5, Z: 0.1},
			},
			FingerExtension: thumbOnly, DurationMs: 2000,
		}},
		{Key: "good", Gesture: entities.GestureDescriptor{
			Name: "Good", Description: "Thumb up gesture",
			PoseKeyframes:   []entities.Point3D{{X: 0.5, Y: 0.5, Z: 0.1}},
			FingerExtension: thumbOnly, DurationMs: 1500,
		}},
		{Key: "bad", Gesture: entities.GestureDescriptor{
			Name: "Bad", Description: "Thumb down gesture",
			PoseKeyframes:   []entities.Point3D{{X: 0.5, Y: 0.5, Z: 0.1}},
			FingerExtension: thumbOnly, DurationMs: 1500,
		}},
		{Key: "love", Gesture: entities.GestureDescriptor{
			Name: "Love", Description: "Crossed arms over chest",
			PoseKeyframes: []entities.Point3D{
				{X: 0.3, Y: 0.5, Z: 0.1},
				{X: 0.7, Y: 0.5, Z: 0.1},
			},
			FingerExtension: allFingers, DurationMs: 2500,
		}},
	}
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultEntries())
	if err != nil {
		panic("sign: built-in catalog is invalid: " + err.Error())
	}
	return c
}
