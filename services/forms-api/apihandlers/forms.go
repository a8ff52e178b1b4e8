package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/finnscodingadventure/digilizeforms/pkg/apihelpers/middlewares"
	formresponses "github.com/finnscodingadventure/digilizeforms/pkg/exporter/form-responses"
	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
	jwthandling "github.com/finnscodingadventure/digilizeforms/pkg/jwt-handling"
)

func (h *HttpEndpoints) AddFormsAPI(rg *gin.RouterGroup) {
	formsGroup := rg.Group("/forms")
	formsGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		formsGroup.GET("", h.getForms)
		formsGroup.POST("", mw.RequirePayload(), h.createForm)
		formsGroup.GET("/response-counts", h.getResponseCounts)
		formsGroup.GET("/:formID", h.getForm)
		formsGroup.PUT("/:formID", mw.RequirePayload(), h.updateForm)
		formsGroup.DELETE("/:formID", h.deleteForm)
		formsGroup.POST("/:formID/publish", h.publishForm)
		formsGroup.POST("/:formID/unpublish", h.unpublishForm)
		formsGroup.GET("/:formID/responses", h.getFormResponses)
		formsGroup.GET("/:formID/responses/export", h.exportFormResponses)
	}
}

func (h *HttpEndpoints) ownerID(c *gin.Context) string {
	token := c.MustGet("validatedToken").(*jwthandling.UserClaims)
	return token.Subject
}

func (h *HttpEndpoints) getForms(c *gin.Context) {
	forms, err := h.formsDBConn.GetFormsByOwner(c.Request.Context(), h.ownerID(c))
	if err != nil {
		slog.Error("failed to fetch forms", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forms"})
		return
	}

	summaries := make([]formTypes.FormSummary, len(forms))
	for i := range forms {
		summaries[i] = forms[i].Summary()
	}
	c.JSON(http.StatusOK, gin.H{"forms": summaries})
}

type CreateFormReq struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Structure   *formTypes.FormStructure `json:"structure"`
}

func (h *HttpEndpoints) createForm(c *gin.Context) {
	var req CreateFormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := req.Title
	if title == "" {
		title = formTypes.DEFAULT_FORM_TITLE
	}
	structure := req.Structure
	if structure == nil {
		structure = &formTypes.FormStructure{Blocks: []formTypes.Block{}}
	}
	if err := formTypes.ValidateBlocks(structure.Blocks); err != nil {
		slog.Error("invalid form structure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := h.formsDBConn.CreateForm(c.Request.Context(), &formTypes.FormDocument{
		OwnerID:     h.ownerID(c),
		Title:       title,
		Description: req.Description,
		Structure:   structure,
	})
	if err != nil {
		slog.Error("failed to create form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create form"})
		return
	}

	slog.Info("form created", slog.String("formID", form.ID.Hex()), slog.String("userID", form.OwnerID))
	c.JSON(http.StatusCreated, gin.H{"form": form})
}

func (h *HttpEndpoints) getForm(c *gin.Context) {
	form, err := h.formsDBConn.GetFormByID(c.Request.Context(), c.Param("formID"), h.ownerID(c))
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		slog.Error("failed to fetch form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (h *HttpEndpoints) updateForm(c *gin.Context) {
	var patch formTypes.FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if patch.Title != nil && *patch.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form title cannot be empty"})
		return
	}
	if patch.Structure != nil {
		if err := formTypes.ValidateBlocks(patch.Structure.Blocks); err != nil {
			slog.Error("invalid form structure", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	form, err := h.formsDBConn.UpdateForm(c.Request.Context(), c.Param("formID"), h.ownerID(c), patch)
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		slog.Error("failed to update form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (h *HttpEndpoints) deleteForm(c *gin.Context) {
	err := h.formsDBConn.DeleteForm(c.Request.Context(), c.Param("formID"), h.ownerID(c))
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		slog.Error("failed to delete form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete form"})
		return
	}

	slog.Info("form deleted", slog.String("formID", c.Param("formID")))
	c.JSON(http.StatusOK, gin.H{"message": "form deleted"})
}

func (h *HttpEndpoints) setPublished(c *gin.Context, published bool) {
	form, err := h.formsDBConn.UpdateForm(c.Request.Context(), c.Param("formID"), h.ownerID(c), formTypes.FormPatch{
		IsPublished: &published,
	})
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		slog.Error("failed to update form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update form"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (h *HttpEndpoints) publishForm(c *gin.Context) {
	h.setPublished(c, true)
}

func (h *HttpEndpoints) unpublishForm(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *HttpEndpoints) getResponseCounts(c *gin.Context) {
	rows, err := h.formsDBConn.GetResponseCountsByOwner(c.Request.Context(), h.ownerID(c))
	if err != nil {
		slog.Error("failed to fetch response counts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch response counts"})
		return
	}

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.FormID] = row.Count
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (h *HttpEndpoints) getFormResponses(c *gin.Context) {
	form, err := h.formsDBConn.GetFormByID(c.Request.Context(), c.Param("formID"), h.ownerID(c))
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		slog.Error("failed to fetch form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch form"})
		return
	}

	responses, err := h.formsDBConn.GetResponsesForForm(c.Request.Context(), c.Param("formID"))
	if err != nil {
		slog.Error("failed to fetch responses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch responses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"form":      form,
		"responses": responses,
	})
}

func (h *HttpEndpoints) exportFormResponses(c *gin.Context) {
	form, err := h.formsDBConn.GetFormByID(c.Request.Context(), c.Param("formID"), h.ownerID(c))
	if err != nil {
		if errors.Is(err, formTypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		slog.Error("failed to fetch form", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch form"})
		return
	}

	responses, err := h.formsDBConn.GetResponsesForForm(c.Request.Context(), c.Param("formID"))
	if err != nil {
		slog.Error("failed to fetch responses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch responses"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+formresponses.Filename(form.Title)+`"`)
	c.Header("Content-Type", "text/csv")
	if err := formresponses.WriteCSV(c.Writer, form, responses); err != nil {
		slog.Error("failed to write CSV export", slog.String("error", err.Error()))
	}
}
