package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicVisibility(t *testing.T) {
	var v Visibility = PublicVisibility{}
	assert.True(t, v.VisibleTo("anyone"))
	assert.Equal(t, "public", v.Kind())
}

func TestPrivateVisibility(t *testing.T) {
	v := NewPrivateVisibility("critic", "editor")
	assert.True(t, v.VisibleTo("critic"))
	assert.True(t, v.VisibleTo("editor"))
	assert.False(t, v.VisibleTo("stranger"))
	assert.Equal(t, "private", v.Kind())
}

func TestVisibility_WireRoundTrip(t *testing.T) {
	data, err := MarshalVisibility(NewPrivateVisibility("critic"))
	require.NoError(t, err)

	restored, err := UnmarshalVisibility(data)
	require.NoError(t, err)
	assert.True(t, restored.VisibleTo("critic"))
	assert.False(t, restored.VisibleTo("editor"))

	public, err := UnmarshalVisibility(nil)
	require.NoError(t, err)
	assert.True(t, public.VisibleTo("anyone"))

	_, err = UnmarshalVisibility([]byte(`{"kind":"secret"}`))
	require.Error(t, err)
}

func TestMarshalVisibility_NilIsPublic(t *testing.T) {
	data, err := MarshalVisibility(nil)
	require.NoError(t, err)
	v, err := UnmarshalVisibility(data)
	require.NoError(t, err)
	assert.Equal(t, "public", v.Kind())
}
