package model

// Statistics holds row counts exported as metrics.
type Statistics struct {
	Psychologists     int64
	Patients          int64
	ProgramPages      int64
	GeneratedPrograms int64
}
