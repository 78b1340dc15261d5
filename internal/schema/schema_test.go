package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundle_RenderAppendsLocalStorage(t *testing.T) {
	b := Bundle{SQL: "CREATE TABLE tasks (id TEXT PRIMARY KEY);", Version: 1}

	script := b.Render()

	assert.True(t, strings.HasPrefix(script, "CREATE TABLE tasks"))
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS local_storage")
	assert.Contains(t, script, "local_storage_key_index")
}

func TestBundle_RenderEmptySchemaStillHasLocalStorage(t *testing.T) {
	script := Bundle{Version: 1}.Render()

	assert.True(t, strings.HasPrefix(script, "CREATE TABLE IF NOT EXISTS local_storage"))
}
