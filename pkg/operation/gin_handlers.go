// Package operation provides HTTP handlers exposing manifest conversion.
package operation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	"github.com/patrg444/Cygni/pkg/manifest"
	"github.com/patrg444/Cygni/pkg/migration"
	"k8s.io/klog/v2"
)

// Response formats accepted by ConvertHandler
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Converter converts decoded definitions into rendered manifests
type Converter interface {
	ConvertDocuments(td *v1.TaskDefinition, svc *v1.ServiceDefinition) (*migration.Result, error)
}

// ConvertRequest is the body of a conversion request
type ConvertRequest struct {
	TaskDefinition *v1.TaskDefinition    `json:"taskDefinition" binding:"required"`
	Service        *v1.ServiceDefinition `json:"service" binding:"required"`
}

// ManifestResponse is one manifest of a JSON conversion response
type ManifestResponse struct {
	Kind     string                 `json:"kind"`
	Manifest map[string]interface{} `json:"manifest"`
}

// GinHandler handles conversion requests using Gin
type GinHandler struct {
	converter Converter
}

// NewGinHandler creates a new Gin conversion handler
func NewGinHandler(converter Converter) *GinHandler {
	return &GinHandler{
		converter: converter,
	}
}

// ConvertHandler converts the posted definitions. The combined YAML stream is
// returned by default, ?format=json returns the manifests as JSON objects.
func (h *GinHandler) ConvertHandler(c *gin.Context) {
	format := c.DefaultQuery("format", FormatYAML)
	if format != FormatYAML && format != FormatJSON {
		errorResponse(c, http.StatusBadRequest, "invalid_format", "format must be yaml or json")
		return
	}

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.converter.ConvertDocuments(req.TaskDefinition, req.Service)
	if err != nil {
		if errors.Is(err, v1.ErrMissingField) {
			errorResponse(c, http.StatusUnprocessableEntity, "missing_required_field", err.Error())
			return
		}
		klog.ErrorS(err, "Conversion failed")
		errorResponse(c, http.StatusInternalServerError, "conversion_failed", err.Error())
		return
	}

	if format == FormatYAML {
		c.Data(http.StatusOK, "application/yaml", result.Combined())
		return
	}

	manifests := make([]ManifestResponse, 0, len(result.Rendered))
	for _, m := range result.Manifests.Manifests() {
		doc, err := manifest.Document(result.Manifests, m)
		if err != nil {
			klog.ErrorS(err, "Failed to convert manifest", "kind", m.Kind)
			errorResponse(c, http.StatusInternalServerError, "conversion_failed", err.Error())
			return
		}
		manifests = append(manifests, ManifestResponse{Kind: string(m.Kind), Manifest: doc})
	}

	c.JSON(http.StatusOK, gin.H{
		"appName":   result.AppName,
		"manifests": manifests,
	})
}

// HealthHandler answers liveness checks
func (h *GinHandler) HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func errorResponse(c *gin.Context, status int, errType, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"type":    errType,
		},
	})
}
