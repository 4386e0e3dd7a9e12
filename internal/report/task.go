package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModePDF     Mode = "PDF"
	ModeCompile Mode = "COMPILE"

	// FinalReport is the report template rendering a patient's IDADI evaluation.
	FinalReport = "final_report"
)

var (
	ErrTaskSubmission = errors.New("report task submission failed")
	ErrRenderTimeout  = errors.New("report rendering timed out")
)

// Task is a request to render one report template.
type Task struct {
	ID          string            `json:"id"`
	File        string            `json:"file"`
	Parameters  map[string]string `json:"parameters"`
	Mode        Mode              `json:"mode"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

func NewTask(file string, parameters map[string]string, mode Mode) Task {
	return Task{
		ID:          uuid.NewString(),
		File:        file,
		Parameters:  parameters,
		Mode:        mode,
		SubmittedAt: time.Now().UTC(),
	}
}
