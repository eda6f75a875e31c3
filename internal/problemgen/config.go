package problemgen

// Config controls the behavior of the Instantiator.
type Config struct {
	// FreeInputEnabled allows free-input questions. When false every
	// question is presented as multiple-choice, whatever its template says.
	FreeInputEnabled bool

	// MaxRegenerateAttempts caps how many times variables are perturbed
	// when an answer set collapses to fewer than two distinct options.
	MaxRegenerateAttempts int

	// Validators run in order on every instantiated question; the first
	// failure rejects it.
	Validators []Validator
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		FreeInputEnabled:      false,
		MaxRegenerateAttempts: 5,
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerSetValidator{},
		},
	}
}
