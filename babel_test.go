package babel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndOpenRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	root := t.TempDir()
	e, err := Init(root)
	require.NoError(t, err)
	defer e.Close()

	assert.NotNil(t, e.Graph())
	assert.Equal(t, "shared", string(ScopeShared))

	reopened, err := Open(root)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, root, reopened.Layout.Root)
}
