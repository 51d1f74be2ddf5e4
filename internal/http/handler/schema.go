package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping.app/pricewatch/internal/model"
)

type SchemaHandler struct{}

func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// Get serves the JSON Schema of a queue payload for downstream consumers.
func (h *SchemaHandler) Get(c *gin.Context) {
	schema, ok := model.PayloadSchema(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown schema"})
		return
	}
	c.JSON(http.StatusOK, schema)
}
