package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategorySet(t *testing.T) {
	s := NewCategorySet([]string{"Luz", " ", "Luz", "Agua"})
	assert.Equal(t, []string{"Luz", "Agua", FallbackCategory}, s.Labels())
	assert.Equal(t, "Luz", s.First())
}

func TestDefaultCategorySet(t *testing.T) {
	s := DefaultCategorySet()
	assert.Equal(t, 17, s.Len())
	assert.Equal(t, "Comida", s.First())
	assert.True(t, s.Contains(FallbackCategory))
}

func TestCategorySet_AddRemove(t *testing.T) {
	s := DefaultCategorySet()

	assert.True(t, s.Add(" Mascotas "))
	assert.False(t, s.Add("Mascotas"))
	assert.False(t, s.Add(""))
	assert.True(t, s.Contains("Mascotas"))

	require.NoError(t, s.Remove("Mascotas"))
	assert.False(t, s.Contains("Mascotas"))
	assert.ErrorIs(t, s.Remove("Mascotas"), ErrCategoryNotFound)
	assert.ErrorIs(t, s.Remove(FallbackCategory), ErrFallbackCategory)
}

func TestCategorySet_Merge(t *testing.T) {
	s := NewCategorySet([]string{"Mascotas"})
	s.Merge(DefaultCategories())
	labels := s.Labels()
	assert.Equal(t, "Mascotas", labels[0])
	assert.Equal(t, 18, s.Len())
}

func TestCategorySet_Coerce(t *testing.T) {
	s := DefaultCategorySet()
	assert.Equal(t, "Luz", s.Coerce(" Luz "))
	assert.Equal(t, FallbackCategory, s.Coerce("luz"))
	assert.Equal(t, FallbackCategory, s.Coerce(""))
}

func TestCategorySet_LabelsIsCopy(t *testing.T) {
	s := DefaultCategorySet()
	labels := s.Labels()
	labels[0] = "changed"
	assert.Equal(t, "Comida", s.First())
}
