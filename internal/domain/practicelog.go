package domain

import (
	"sort"
	"time"
)

// LoggedExercise is the snapshot of an exercise taken when a session completes.
// Names are copied so the log still reads correctly after edits or deletes.
type LoggedExercise struct {
	ExerciseID      string `json:"exerciseId"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

type PracticeLog struct {
	ID                   string           `json:"id"`
	RoutineID            string           `json:"routineId"`
	RoutineName          string           `json:"routineName"`
	CompletedAt          time.Time        `json:"completedAt"`
	Exercises            []LoggedExercise `json:"exercises"`
	TotalDurationMinutes int              `json:"totalDurationMinutes"`
}

// LogInput is a PracticeLog before the store assigns it an ID.
type LogInput struct {
	RoutineID            string
	RoutineName          string
	CompletedAt          time.Time
	Exercises            []LoggedExercise
	TotalDurationMinutes int
}

// RecentLogDays is the window of the practice log view.
const RecentLogDays = 7

// RecentLogs returns the logs completed within the last days days of now,
// newest first.
func RecentLogs(logs []PracticeLog, now time.Time, days int) []PracticeLog {
	cutoff := now.AddDate(0, 0, -days)
	recent := make([]PracticeLog, 0, len(logs))
	for _, l := range logs {
		if !l.CompletedAt.Before(cutoff) {
			recent = append(recent, l)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CompletedAt.After(recent[j].CompletedAt)
	})
	return recent
}
