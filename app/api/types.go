package api

import (
	"github.com/getsendy/sendy-pipeline/app/database"
	"github.com/getsendy/sendy-pipeline/app/tasks"
)

type Handler struct {
	packRepo  database.PackRepository
	draftRepo database.DraftRepository
	pipeline  tasks.PipelineRunnerInterface
}

// packUpdateRequest carries the reviewer-editable fields of a pack. Nil
// fields are left unchanged.
type packUpdateRequest struct {
	Summary       *string  `json:"summary"`
	Bullets       []string `json:"bullets"`
	Tags          []string `json:"tags"`
	ReviewerNotes *string  `json:"reviewer_notes"`
	Status        *string  `json:"status"`
}

type rejectRequest struct {
	ReviewerNotes string `json:"reviewer_notes" binding:"required,min=3"`
}
