package utility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validator.Validate caches struct metadata and is safe for concurrent use
var validate = validator.New()

// Validate checks the validate tags of a struct and joins the failures into one error
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid %T: %s", v, strings.Join(messages, "; "))
}
