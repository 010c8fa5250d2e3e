package xpa

// Record is a placeholder for structured XPA responses. The original
// binding exposed an empty record type for future use; it is kept so the
// exported surface stays stable once responses grow structure.
type Record struct{}
