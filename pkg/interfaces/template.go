package interfaces

import "io"

// TemplateRenderer renders Django-syntax template source against a context
// map. Output is returned and, when writers are given, copied to each.
type TemplateRenderer interface {
	RenderString(source string, data any, out ...io.Writer) (string, error)
}
