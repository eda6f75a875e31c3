package problemgen

import "fmt"

// Validator is one stage of the post-instantiation check chain. t is nil
// for static catalog questions. Validators hold no state and are shared
// across goroutines.
type Validator interface {
	Name() string
	Validate(q *Question, t *Template) *ValidationError
}

// ValidationError names the failing stage. Retryable marks failures that a
// fresh variable draw may clear, such as a duplicate distractor.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// GenerationError reports a template that could not produce a question.
type GenerationError struct {
	TemplateID string
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("instantiate template %q: %v", e.TemplateID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Validate stops at the first failing stage.
func Validate(q *Question, t *Template, validators []Validator) *ValidationError {
	for _, v := range validators {
		if verr := v.Validate(q, t); verr != nil {
			return verr
		}
	}
	return nil
}
