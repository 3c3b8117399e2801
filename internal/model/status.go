package model

// Reconciliation statuses written to the Status column. The exact strings are
// consumed by downstream spreadsheets and must not be reworded.
const (
	StatusOpen         = "OPEN"
	StatusComplete     = "DE_COMPLETE"
	StatusMismatchDOS  = "MISMATCH DOS"
	StatusInvalidCode  = "INVALID CODE IN TABLEAU"
	StatusNameNotFound = "NAME NOT FOUND IN TABLEAU"
	StatusRowError     = "PROCESSING ERROR"
)

// Billing statuses written to the Census Reconciliation column.
const (
	BillingBilled = "BILLED"
	BillingLWBS   = "LWBS"
	BillingAMA    = "AMA"
	BillingNonED  = "NON ED ENCOUNTERS"
	BillingNA     = "#N/A"
)

// Larkin-profile statuses. This profile predates the OPEN/DE_COMPLETE
// machine and uses a coarser vocabulary with slightly different spellings.
const (
	LarkinBilled       = "BILLED"
	LarkinMismatchDOS  = "MISMATCHED DOS"
	LarkinNameNotFound = "NAME NOT IN TABLEAU"
	LarkinAbandoned    = "ABANDONED"
)

// NoMatch is the fill value for borrowed columns when the concord profile
// finds no cross-reference for a row.
const NoMatch = "#N/A"
