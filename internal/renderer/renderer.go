// Package renderer is the boundary to the external document compositor.
// The compositor is opaque: it takes a resolved source document, the field
// layout, and the submitted values, and returns rendered output. Everything
// on this side treats it as a synchronous call with a bounded timeout.
package renderer

import (
	"context"
	"encoding/json"
)

type Options struct {
	// Flatten bakes the filled fields into static page content.
	Flatten bool `json:"flatten"`
	// Output selects the response encoding; "base64" returns the rendered
	// bytes as a base64 text body.
	Output string `json:"output"`
}

// DefaultOptions mirrors what the web client sends when it does not care.
func DefaultOptions() Options {
	return Options{Flatten: true, Output: "base64"}
}

type Request struct {
	FileURL     string          `json:"fileUrl"`
	FieldSchema json.RawMessage `json:"fieldSchema"`
	Payload     map[string]any  `json:"payload"`
	Options     Options         `json:"options"`
}

// Renderer is the compositor contract. Render returns the raw response body
// (base64 text when Options.Output is "base64"), apperrors.ErrRenderTimeout
// when the deadline expires, or an *apperrors.RenderError carrying the
// compositor's diagnostic text verbatim.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}
