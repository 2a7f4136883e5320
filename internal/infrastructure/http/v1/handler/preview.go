package handler

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed preview.html
var previewHTML string

var previewTemplate = template.Must(template.New("preview").Parse(previewHTML))

// PreviewHTML serves a small Leaflet page pointed at this service, for
// eyeballing tiles without a separate client.
func (h *Handler) PreviewHTML(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	err := previewTemplate.Execute(c.Writer, gin.H{
		"TilesURLBase": h.preview.TilesURLBase,
		"APIKey":       h.preview.APIKey,
	})
	if err != nil {
		c.Error(err)
	}
}
