package typesense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesSchema(t *testing.T) {
	schema := ServicesSchema("services_test")

	assert.Equal(t, "services_test", schema.Name)
	require.NotNil(t, schema.DefaultSortingField)
	assert.Equal(t, "created_at", *schema.DefaultSortingField)

	fields := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		fields[f.Name] = f.Type
	}
	assert.Equal(t, "string", fields["title"])
	assert.Equal(t, "float", fields["price"])
	assert.Equal(t, "bool", fields["barter"])
	assert.Equal(t, "int64", fields["created_at"])

	// every filterable clause field must be present in the schema
	for _, name := range []string{"owner_id", "category_id", "type", "status"} {
		assert.Contains(t, fields, name)
	}
}
