package openapi

import "fmt"

// validateDocument checks the fields every consumer of the document relies on.
func validateDocument(document map[string]any) error {
	if version, _ := document["openapi"].(string); version == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for path, item := range paths {
		operations, _ := item.(map[string]any)
		if len(operations) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", path)
		}
		for method, raw := range operations {
			op, _ := raw.(map[string]any)
			if op == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, path)
			}
			if _, ok := op["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, path)
			}
			if _, ok := op["requestBody"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing requestBody", method, path)
			}
			if responses, _ := op["responses"].(map[string]any); len(responses) == 0 {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, path)
			}
		}
	}
	return nil
}
