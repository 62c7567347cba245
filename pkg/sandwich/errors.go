package sandwich

import "fmt"

type stageError struct {
	stage string
	msg   string
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %s", e.stage, e.msg)
}

func errStageUnavailable(stage string) error {
	return &stageError{stage: stage, msg: "stage unavailable or produced no output"}
}

func errStagePanic(stage string, v any) error {
	return &stageError{stage: stage, msg: fmt.Sprintf("panic: %v", v)}
}
