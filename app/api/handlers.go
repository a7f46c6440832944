package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/getsendy/sendy-pipeline/app/database"
	"github.com/getsendy/sendy-pipeline/app/pipeline"
	"github.com/getsendy/sendy-pipeline/app/tasks"
)

func NewHandler(packRepo database.PackRepository, draftRepo database.DraftRepository,
	pipelineRunner tasks.PipelineRunnerInterface) *Handler {
	return &Handler{
		packRepo:  packRepo,
		draftRepo: draftRepo,
		pipeline:  pipelineRunner,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if packCount, err := h.packRepo.GetPackCount(c.Request.Context()); err == nil {
		health["content_packs"] = packCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListPacks(c *gin.Context) {
	var filter database.PackFilter

	if raw := c.Query("status"); raw != "" {
		status, ok := database.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + raw})
			return
		}
		filter.Status = &status
	}

	if raw := c.Query("breaking"); raw != "" {
		breaking, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid breaking flag: " + raw})
			return
		}
		filter.Breaking = &breaking
	}

	packs, err := h.packRepo.ListPacks(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_packs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	results := make([]map[string]interface{}, 0, len(packs))
	for i := range packs {
		results = append(results, serializePack(&packs[i]))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"content_packs": results,
		"total":         len(results),
	})
}

func (h *Handler) GetPack(c *gin.Context) {
	pack, ok := h.loadPack(c)
	if !ok {
		return
	}

	detail, err := h.serializePackDetail(c, pack)
	if err != nil {
		slog.Error("Database error", "operation", "get_pack_detail", "pack", pack.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdatePack(c *gin.Context) {
	var req packUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	pack, ok := h.loadPack(c)
	if !ok {
		return
	}

	if req.Summary != nil {
		pack.Summary = *req.Summary
	}
	if req.Bullets != nil {
		pack.Bullets = req.Bullets
	}
	if req.Tags != nil {
		pack.Tags = req.Tags
	}
	if req.ReviewerNotes != nil {
		pack.ReviewerNotes = *req.ReviewerNotes
	}
	if req.Status != nil {
		status, valid := database.ParseStatus(*req.Status)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + *req.Status})
			return
		}
		if err := pipeline.Transition(pack, status); err != nil {
			var invalid *pipeline.InvalidTransitionError
			if errors.As(err, &invalid) {
				c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transition failed"})
			return
		}
	}

	if err := h.packRepo.UpdatePackContent(c.Request.Context(), pack); err != nil {
		slog.Error("Database error", "operation", "update_pack", "pack", pack.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, serializePack(pack))
}

func (h *Handler) ApprovePack(c *gin.Context) {
	pack, ok := h.loadPack(c)
	if !ok {
		return
	}

	if err := pipeline.Transition(pack, database.StatusApproved); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.packRepo.UpdatePackStatus(c.Request.Context(), pack.ID, pack.Status); err != nil {
		slog.Error("Database error", "operation", "approve_pack", "pack", pack.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, serializePack(pack))
}

func (h *Handler) RejectPack(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reviewer notes are required: " + err.Error()})
		return
	}

	pack, ok := h.loadPack(c)
	if !ok {
		return
	}

	pack.ReviewerNotes = req.ReviewerNotes

	// Rejection only pulls a pack back into review from DRAFT_READY; packs
	// further along keep their status and just record the notes.
	if pack.Status == database.StatusDraftReady {
		if err := pipeline.Transition(pack, database.StatusInReview); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.packRepo.UpdatePackContent(c.Request.Context(), pack); err != nil {
		slog.Error("Database error", "operation", "reject_pack", "pack", pack.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, serializePack(pack))
}

func (h *Handler) ExportPack(c *gin.Context) {
	pack, ok := h.loadPack(c)
	if !ok {
		return
	}

	detail, err := h.serializePackDetail(c, pack)
	if err != nil {
		slog.Error("Database error", "operation", "export_pack", "pack", pack.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"handoff_package": detail,
		"units": map[string]string{
			"distance":            "km",
			"ui_toggle_supported": "miles",
		},
	})
}

func (h *Handler) RunPipeline(c *gin.Context) {
	created, err := h.pipeline.RunPipeline(c.Request.Context())
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Pipeline run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"created_content_packs": created})
}

func (h *Handler) loadPack(c *gin.Context) (*database.ContentPack, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing pack id parameter"})
		return nil, false
	}

	pack, err := h.packRepo.GetPack(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_pack", "pack", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if pack == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content pack not found"})
		return nil, false
	}

	return pack, true
}
