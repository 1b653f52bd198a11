package domain

// Document is one unit of input text to summarize.
type Document struct {
	Text   string
	Source string
}

// Chunk is an ordered, token-bounded segment of a document.
type Chunk struct {
	Index  int
	Text   string
	Tokens int
}

// LengthTarget bounds the desired output length for one chunk.
type LengthTarget struct {
	Target int
	Min    int
}

// Notice is a non-fatal warning produced while preparing input.
type Notice struct {
	Message string
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

// Outcome is the terminal state of one chunk task.
type Outcome struct {
	Index    int
	Kind     OutcomeKind
	Summary  string
	Err      error
	Attempts int
}

// Result is the single terminal answer for a summarization request.
type Result struct {
	Success bool
	Summary string
	Reason  string
}

func Failure(reason string) Result {
	return Result{Reason: reason}
}
