package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteducksoftware/flock-go/core"
)

type idea struct {
	Topic string `json:"topic"`
}

type movie struct {
	Title string `json:"title"`
}

func (m movie) Validate() error {
	if m.Title == "" {
		return errors.New("movie needs a title")
	}
	return nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("idea", idea{}, nil))

	typ, ok := r.Lookup("idea")
	require.True(t, ok)
	assert.Equal(t, "idea", typ.Name)

	_, ok = r.Lookup("movie")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"idea"}, r.Names())
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("idea", idea{}, nil))
	require.Error(t, r.Register("idea", movie{}, nil))
	require.Error(t, r.Register("idea2", idea{}, nil)) // same Go type
}

func TestRegistry_TypeOf(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("idea", idea{}, nil))

	name, ok := r.TypeOf(idea{Topic: "x"})
	require.True(t, ok)
	assert.Equal(t, "idea", name)

	name, ok = r.TypeOf(&idea{Topic: "x"})
	require.True(t, ok)
	assert.Equal(t, "idea", name)

	_, ok = r.TypeOf("unregistered")
	assert.False(t, ok)
}

func TestRegistry_New(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("idea", idea{}, nil))

	v, ok := r.New("idea")
	require.True(t, ok)
	_, isPtr := v.(*idea)
	assert.True(t, isPtr)

	_, ok = r.New("movie")
	assert.False(t, ok)
}

func TestRegistry_Validate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("idea", idea{}, func(payload any) error {
		if payload.(idea).Topic == "" {
			return fmt.Errorf("topic required")
		}
		return nil
	}))

	require.NoError(t, r.Validate("idea", idea{Topic: "x"}))
	require.NoError(t, r.Validate("idea", &idea{Topic: "x"}))

	err := r.Validate("idea", idea{})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "idea", verr.Type)

	err = r.Validate("idea", movie{})
	require.ErrorAs(t, err, &verr)

	err = r.Validate("unknown", idea{})
	require.ErrorIs(t, err, core.ErrTypeNotRegistered)
}

func TestRegistry_ValidatorInterface(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("movie", movie{}, nil))

	require.NoError(t, r.Validate("movie", movie{Title: "Dune"}))

	err := r.Validate("movie", movie{})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
}
