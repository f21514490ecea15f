// Package ai defines the optional AI-assisted proposal drafting interface.
package ai

import (
	"context"

	"github.com/idea-allies/upwork-pipeline/internal/pipeline"
	"github.com/idea-allies/upwork-pipeline/internal/profile"
)

// Drafter produces a proposal draft for a job. Implementations may call an
// external model; callers must treat failures as non-fatal and fall back to
// template generation.
type Drafter interface {
	Draft(ctx context.Context, job *pipeline.Job, prof *profile.Profile) (string, error)
}
