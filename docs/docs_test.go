package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocListsEndpoints(t *testing.T) {
	var doc struct {
		BasePath    string                     `json:"basePath"`
		Paths       map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.NotEmpty(t, doc.Paths)

	for _, path := range []string{
		"/auth/login",
		"/auth/set-password",
		"/dashboard",
		"/enrollments",
		"/enrollments/{id}/complete",
		"/admin/courses/{id}",
		"/admin/employees",
	} {
		assert.Contains(t, doc.Paths, path)
	}

	for _, def := range []string{"model.Enrollment", "model.LoginResponse", "model.DashboardResponse"} {
		assert.Contains(t, doc.Definitions, def)
	}
}
