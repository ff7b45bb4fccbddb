package field

import "context"

// NamePrompter asks the user for a collector display name.
// Implementations live at the UI boundary (terminal, tests).
type NamePrompter interface {
	// PromptName blocks until the user enters a name or dismisses the
	// prompt. ok is false when the prompt was dismissed; that is an
	// expected outcome, not an error. The returned name is not yet
	// validated or trimmed.
	PromptName(ctx context.Context) (name string, ok bool, err error)
}

// Confirmer obtains explicit user confirmation for a destructive operation.
type Confirmer interface {
	// ConfirmClear presents the exact number of points about to be
	// destroyed and returns true only on explicit confirmation.
	ConfirmClear(ctx context.Context, count int) (bool, error)
}
