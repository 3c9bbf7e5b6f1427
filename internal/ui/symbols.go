package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Host classified compatible
	SymbolFail     = "✗" // Key-exchange incompatibility
	SymbolSkipped  = "⊘" // Probe could not run
	SymbolProgress = "◐" // Scan in progress
)
