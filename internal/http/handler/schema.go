package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"github.com/limtzeyng/HERizon/internal/http/dto"
)

// SchemaHandler publishes JSON schemas of the request bodies so phone and
// dashboard clients can validate before sending.
type SchemaHandler struct {
	schemas map[string]*jsonschema.Schema
}

func NewSchemaHandler() *SchemaHandler {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return &SchemaHandler{
		schemas: map[string]*jsonschema.Schema{
			"send":     reflector.Reflect(&dto.SendEventRequest{}),
			"response": reflector.Reflect(&dto.RecordResponseRequest{}),
		},
	}
}

func (h *SchemaHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.schemas)
}

func (h *SchemaHandler) Get(c *gin.Context) {
	schema, ok := h.schemas[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "unknown schema"})
		return
	}
	c.JSON(http.StatusOK, schema)
}
