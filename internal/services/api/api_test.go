package api

import (
	"testing"

	"tasksync/internal/services/app"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	spec := func() map[string]any {
		return map[string]any{
			"info":  map[string]any{"version": "0.1.0"},
			"paths": map[string]any{"/runs": map[string]any{}, "/runs/events": map[string]any{}},
		}
	}

	s := spec()
	describe(&app.App{})(s)
	assert.Equal(t, "dev", s["info"].(map[string]any)["version"])
	assert.NotContains(t, s["paths"], "/runs/events")
	assert.Contains(t, s["paths"], "/runs")
}
