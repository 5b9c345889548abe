package models

import (
	"fmt"
	"strings"
)

type WorkoutType string

const (
	WorkoutRunning          WorkoutType = "running"
	WorkoutCycling          WorkoutType = "cycling"
	WorkoutSwimming         WorkoutType = "swimming"
	WorkoutJumpRope         WorkoutType = "jump_rope"
	WorkoutPushups          WorkoutType = "pushups"
	WorkoutPullups          WorkoutType = "pullups"
	WorkoutSquats           WorkoutType = "squats"
	WorkoutLunges           WorkoutType = "lunges"
	WorkoutPlank            WorkoutType = "plank"
	WorkoutBenchPress       WorkoutType = "bench_press"
	WorkoutDeadlift         WorkoutType = "deadlift"
	WorkoutShoulderPress    WorkoutType = "shoulder_press"
	WorkoutBicepCurls       WorkoutType = "bicep_curls"
	WorkoutTricepExtensions WorkoutType = "tricep_extensions"
	WorkoutYoga             WorkoutType = "yoga"
	WorkoutStretching       WorkoutType = "stretching"
)

type WorkoutCategory string

const (
	CategoryCardio      WorkoutCategory = "cardio"
	CategoryStrength    WorkoutCategory = "strength"
	CategoryWeights     WorkoutCategory = "weights"
	CategoryFlexibility WorkoutCategory = "flexibility"
)

// WorkoutSpec is the fixed metadata attached to a workout type.
type WorkoutSpec struct {
	Type            WorkoutType     `json:"id"`
	DisplayName     string          `json:"name"`
	Unit            string          `json:"unit"`
	Category        WorkoutCategory `json:"category"`
	DurationMinutes int             `json:"durationMinutes"`
}

var workoutCatalog = []WorkoutSpec{
	{WorkoutRunning, "Running", "km", CategoryCardio, 30},
	{WorkoutCycling, "Cycling", "km", CategoryCardio, 30},
	{WorkoutSwimming, "Swimming", "laps", CategoryCardio, 30},
	{WorkoutJumpRope, "Jump Rope", "minutes", CategoryCardio, 15},
	{WorkoutPushups, "Push-ups", "reps", CategoryStrength, 10},
	{WorkoutPullups, "Pull-ups", "reps", CategoryStrength, 10},
	{WorkoutSquats, "Squats", "reps", CategoryStrength, 10},
	{WorkoutLunges, "Lunges", "reps", CategoryStrength, 10},
	{WorkoutPlank, "Plank", "seconds", CategoryStrength, 5},
	{WorkoutBenchPress, "Bench Press", "reps", CategoryWeights, 15},
	{WorkoutDeadlift, "Deadlift", "reps", CategoryWeights, 15},
	{WorkoutShoulderPress, "Shoulder Press", "reps", CategoryWeights, 15},
	{WorkoutBicepCurls, "Bicep Curls", "reps", CategoryWeights, 10},
	{WorkoutTricepExtensions, "Tricep Extensions", "reps", CategoryWeights, 10},
	{WorkoutYoga, "Yoga", "minutes", CategoryFlexibility, 30},
	{WorkoutStretching, "Stretching", "minutes", CategoryFlexibility, 15},
}

var workoutIndex = func() map[WorkoutType]WorkoutSpec {
	m := make(map[WorkoutType]WorkoutSpec, len(workoutCatalog))
	for _, s := range workoutCatalog {
		m[s.Type] = s
	}
	return m
}()

// WorkoutCatalog returns a copy of every known workout type in display order.
func WorkoutCatalog() []WorkoutSpec {
	out := make([]WorkoutSpec, len(workoutCatalog))
	copy(out, workoutCatalog)
	return out
}

func ParseWorkoutType(s string) (WorkoutType, error) {
	t := WorkoutType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown workout type %q", s)
	}
	return t, nil
}

func (t WorkoutType) IsValid() bool {
	_, ok := workoutIndex[t]
	return ok
}

// DefaultDurationMinutes is used for types missing from the catalog.
const DefaultDurationMinutes = 15

// Spec returns the catalog entry for t. Unknown types get a humanized name and
// the default duration so historical rows still render.
func (t WorkoutType) Spec() WorkoutSpec {
	if s, ok := workoutIndex[t]; ok {
		return s
	}
	return WorkoutSpec{
		Type:            t,
		DisplayName:     humanize(string(t)),
		DurationMinutes: DefaultDurationMinutes,
	}
}

func (t WorkoutType) Unit() string         { return t.Spec().Unit }
func (t WorkoutType) DisplayName() string  { return t.Spec().DisplayName }
func (t WorkoutType) DurationMinutes() int { return t.Spec().DurationMinutes }

func humanize(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
