package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	FetchError      = 3
	ReconcileError  = 4
	WriteError      = 5
	NoData          = 6
)
