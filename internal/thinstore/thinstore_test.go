package thinstore

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name string
}

func (w widget) Key() string { return w.Name }

func TestStorePutGetListDelete(t *testing.T) {
	s := New[widget]("widget not found")

	s.Put(&widget{Name: "b"})
	s.Put(&widget{Name: "a"})

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	s.Delete("a")
	_, err = s.Get("a")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}

func TestStoreTagsRequireExistingKey(t *testing.T) {
	s := New[widget]("widget not found")
	s.Put(&widget{Name: "a"})

	require.NoError(t, s.Tag("a", map[string]string{"env": "prod"}))
	tags, err := s.Tags("a")
	require.NoError(t, err)
	assert.Equal(t, "prod", tags["env"])

	require.NoError(t, s.Untag("a", []string{"env"}))
	tags, err = s.Tags("a")
	require.NoError(t, err)
	assert.Empty(t, tags)

	err = s.Tag("missing", map[string]string{"x": "y"})
	require.Error(t, err)
}
