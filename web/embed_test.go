package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_ContainsPageAssets(t *testing.T) {
	for _, name := range []string{"styles.css", "js/waitlist.js"} {
		data, err := fs.ReadFile(Static(), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}
}

func TestStaticHTTP_Opens(t *testing.T) {
	f, err := StaticHTTP().Open("/js/waitlist.js")
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
