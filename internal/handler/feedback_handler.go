package handler

import (
	"net/http"
	"strconv"

	"feedback-system/internal/middleware"
	"feedback-system/internal/models"
	"feedback-system/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedback *service.FeedbackService
}

func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// POST /api/feedback
// Status is forced to open server-side; any client-supplied status is
// ignored.
func (h *FeedbackHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateFeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	feedback, err := h.feedback.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Feedback created successfully",
		"data":    feedback,
	})
}

// GET /api/feedback?status&category&minRating&page&limit
func (h *FeedbackHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	minRating, _ := strconv.Atoi(c.Query("minRating"))

	items, meta, err := h.feedback.List(c.Request.Context(), service.ListFeedbackInput{
		Status:    models.FeedbackStatus(c.Query("status")),
		Category:  models.FeedbackCategory(c.Query("category")),
		MinRating: minRating,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"meta":    meta,
		"results": len(items),
		"data":    items,
	})
}

// GET /api/feedback/:id
func (h *FeedbackHandler) Get(c *gin.Context) {
	feedback, err := h.feedback.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   feedback,
	})
}

// PATCH /api/feedback/:id
func (h *FeedbackHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, _ := middleware.RoleFromContext(c)

	var req service.UpdateFeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	feedback, err := h.feedback.Update(c.Request.Context(), c.Param("id"), userID, role, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Feedback updated successfully",
		"data":    feedback,
	})
}

// DELETE /api/feedback/:id
// Responds 204 with an empty body.
func (h *FeedbackHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, _ := middleware.RoleFromContext(c)

	if err := h.feedback.Delete(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/feedback/user/:id?page&limit
func (h *FeedbackHandler) ListByUser(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, meta, err := h.feedback.ListByUser(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   items,
		"meta":   meta,
	})
}
