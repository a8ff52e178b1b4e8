package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/finnscodingadventure/digilizeforms/pkg/apihelpers/middlewares"
	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

// AddPublicAPI mounts the anonymous routes: viewing a published form and
// submitting a response. No token of any kind is required here.
func (h *HttpEndpoints) AddPublicAPI(rg *gin.RouterGroup) {
	publicGroup := rg.Group("/public")
	{
		publicGroup.GET("/forms/:formID", h.getPublicForm)
		publicGroup.POST("/forms/:formID/responses", mw.RequirePayload(), h.submitFormResponse)
	}
}

func (h *HttpEndpoints) getPublicForm(c *gin.Context) {
	form, err := h.publicStore.GetPublicForm(c.Request.Context(), c.Param("formID"))
	if err != nil {
		slog.Error("failed to fetch public form", slog.String("formID", c.Param("formID")), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch form"})
		return
	}
	if form == nil {
		// missing and unpublished are indistinguishable on purpose
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

type SubmitResponseReq struct {
	Answers  map[string]formTypes.AnswerValue `json:"answers"`
	Metadata map[string]string                `json:"metadata"`
}

func (h *HttpEndpoints) submitFormResponse(c *gin.Context) {
	formID := c.Param("formID")

	form, err := h.publicStore.GetPublicForm(c.Request.Context(), formID)
	if err != nil {
		slog.Error("failed to fetch public form", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit response"})
		return
	}
	if form == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}

	var req SubmitResponseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.publicStore.SaveResponse(c.Request.Context(), formID, req.Answers, req.Metadata)
	if err != nil {
		slog.Error("failed to save response", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit response"})
		return
	}

	slog.Info("form response submitted", slog.String("formID", formID), slog.String("responseID", response.ID.Hex()))
	c.JSON(http.StatusCreated, gin.H{"responseId": response.ID.Hex()})
}
