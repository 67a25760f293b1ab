package pipeline

type Outcome string

const (
	Succeeded Outcome = "succeeded"
	Skipped   Outcome = "skipped"
)

// Result is what a step action did when it returned without an error
type Result struct {
	Step    string
	Outcome Outcome

	// Reason explains a skip
	Reason string
}

func succeeded(step string) Result {
	return Result{Step: step, Outcome: Succeeded}
}

func skipped(step, reason string) Result {
	return Result{Step: step, Outcome: Skipped, Reason: reason}
}
