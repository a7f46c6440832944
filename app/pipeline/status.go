package pipeline

import (
	"fmt"

	"github.com/getsendy/sendy-pipeline/app/database"
)

// allowedTransitions maps each status to the statuses a pack may move to
// next. Built once at init and never mutated. ARCHIVED is terminal and has
// no entry.
var allowedTransitions = map[database.Status][]database.Status{
	database.StatusNew:           {database.StatusEnriched},
	database.StatusEnriched:      {database.StatusDraftReady},
	database.StatusDraftReady:    {database.StatusInReview},
	database.StatusInReview:      {database.StatusApproved},
	database.StatusApproved:      {database.StatusArchived, database.StatusAssetsPending, database.StatusScheduled},
	database.StatusAssetsPending: {database.StatusScheduled},
	database.StatusScheduled:     {database.StatusPosted},
	database.StatusPosted:        {database.StatusArchived},
}

// InvalidTransitionError reports an illegal status change request.
type InvalidTransitionError struct {
	From database.Status
	To   database.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Transition moves pack to target in memory. Requesting the current status
// is a no-op. It never touches any other field and never persists; storing
// the new status is the caller's responsibility.
func Transition(pack *database.ContentPack, target database.Status) error {
	if pack.Status == target {
		return nil
	}
	for _, allowed := range allowedTransitions[pack.Status] {
		if allowed == target {
			pack.Status = target
			return nil
		}
	}
	return &InvalidTransitionError{From: pack.Status, To: target}
}
