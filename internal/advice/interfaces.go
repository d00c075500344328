package advice

import "context"

// Generator turns a prompt into free-form text.
// This interface enables mocking of the model backend in tests.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
