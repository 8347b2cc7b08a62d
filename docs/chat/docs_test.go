package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocListsRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths       map[string]map[string]interface{} `json:"paths"`
		Definitions map[string]interface{}            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Contains(t, doc.Paths["/conversations"], "get")
	assert.Contains(t, doc.Paths["/conversations"], "post")
	assert.Contains(t, doc.Paths["/conversations/{id}/messages"], "get")
	assert.Contains(t, doc.Paths["/conversations/{id}/messages"], "post")
	assert.Contains(t, doc.Paths["/conversations/{id}/read"], "post")
	assert.Contains(t, doc.Definitions, "domain.SendMessageReq")
}
