package core

import "fmt"

// Warning a data quality issue that did not stop the build
type Warning struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Warnings ordered, append-only
type Warnings []Warning

func (w *Warnings) Add(field, format string, args ...interface{}) {
	*w = append(*w, Warning{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (w Warnings) Strings() []string {
	list := make([]string, 0, len(w))
	for _, warning := range w {
		list = append(list, warning.String())
	}
	return list
}
