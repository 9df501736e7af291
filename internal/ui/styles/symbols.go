package styles

// Result symbols for hook summaries.
const (
	SymbolPass = "✓"
	SymbolFail = "✗"
	SymbolSkip = "-"
)

// Pass renders the pass symbol in the success color.
func Pass() string { return SuccessStyle.Render(SymbolPass) }

// Fail renders the fail symbol in the error color.
func Fail() string { return ErrorStyle.Render(SymbolFail) }

// Skip renders the skip symbol muted.
func Skip() string { return MutedStyle.Render(SymbolSkip) }
