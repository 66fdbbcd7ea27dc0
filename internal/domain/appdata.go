package domain

// AppData is the aggregate root persisted locally and mirrored remotely as a
// single document.
type AppData struct {
	Exercises []Exercise    `json:"exercises"`
	Routines  []Routine     `json:"routines"`
	Logs      []PracticeLog `json:"logs"`
}

// EmptyAppData returns an aggregate with non-nil empty slices so it encodes
// as empty JSON arrays.
func EmptyAppData() AppData {
	return AppData{
		Exercises: []Exercise{},
		Routines:  []Routine{},
		Logs:      []PracticeLog{},
	}
}

// Normalize replaces nil slices with empty ones.
func (d AppData) Normalize() AppData {
	if d.Exercises == nil {
		d.Exercises = []Exercise{}
	}
	if d.Routines == nil {
		d.Routines = []Routine{}
	}
	for i := range d.Routines {
		if d.Routines[i].Exercises == nil {
			d.Routines[i].Exercises = []RoutineExercise{}
		}
	}
	if d.Logs == nil {
		d.Logs = []PracticeLog{}
	}
	for i := range d.Logs {
		if d.Logs[i].Exercises == nil {
			d.Logs[i].Exercises = []LoggedExercise{}
		}
	}
	return d
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (d AppData) Clone() AppData {
	out := AppData{
		Exercises: append([]Exercise{}, d.Exercises...),
		Routines:  make([]Routine, len(d.Routines)),
		Logs:      make([]PracticeLog, len(d.Logs)),
	}
	for i, r := range d.Routines {
		r.Exercises = append([]RoutineExercise{}, r.Exercises...)
		out.Routines[i] = r
	}
	for i, l := range d.Logs {
		l.Exercises = append([]LoggedExercise{}, l.Exercises...)
		out.Logs[i] = l
	}
	return out
}

// FindExercise returns the exercise with the given id.
func (d AppData) FindExercise(id string) (Exercise, bool) {
	for _, ex := range d.Exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return Exercise{}, false
}

// FindRoutine returns the routine with the given id.
func (d AppData) FindRoutine(id string) (Routine, bool) {
	for _, r := range d.Routines {
		if r.ID == id {
			return r, true
		}
	}
	return Routine{}, false
}

// ExerciseName resolves an exercise id to its name, falling back to
// UnknownExerciseName for dangling references.
func (d AppData) ExerciseName(id string) string {
	if ex, ok := d.FindExercise(id); ok {
		return ex.Name
	}
	return UnknownExerciseName
}
