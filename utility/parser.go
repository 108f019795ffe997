package utility

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadJson decodes the json file at path into v
func ReadJson(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err = json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
