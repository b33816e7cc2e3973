package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
)

// FallbackCategory receives every transaction whose category is missing or
// unknown. It can never be removed from a CategorySet.
const FallbackCategory = "Otros"

var (
	// ErrFallbackCategory is returned when removing the fallback category.
	ErrFallbackCategory = errors.New("fallback category cannot be removed")
	// ErrCategoryNotFound is returned when removing an unknown category.
	ErrCategoryNotFound = fmt.Errorf("category %w", common.ErrNotFound)
)

// DefaultCategories is the initial category list, in display order.
func DefaultCategories() []string {
	return []string{
		"Comida", "Ocio", "Deporte", "Supermercado", "Hijos", "Ropa",
		"Transporte", "Seguros", "Gas", "Luz", "Agua", "Casa",
		"Suscripciones", "Salud", "ING", "Ahorro", FallbackCategory,
	}
}

// CategorySet is an ordered list of unique category labels. Order is display
// order only.
type CategorySet struct {
	labels []string
}

// NewCategorySet builds a set from labels, dropping blanks and duplicates and
// appending the fallback category when absent.
func NewCategorySet(labels []string) *CategorySet {
	s := &CategorySet{}
	for _, l := range labels {
		s.Add(l)
	}
	s.Add(FallbackCategory)
	return s
}

// DefaultCategorySet returns a set holding DefaultCategories.
func DefaultCategorySet() *CategorySet {
	return NewCategorySet(DefaultCategories())
}

// Add appends a label. It reports false for blank or already present labels.
func (s *CategorySet) Add(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || s.Contains(label) {
		return false
	}
	s.labels = append(s.labels, label)
	return true
}

// Merge appends every label of others not yet present, keeping current order.
func (s *CategorySet) Merge(others []string) {
	for _, l := range others {
		s.Add(l)
	}
}

// Remove deletes a label.
func (s *CategorySet) Remove(label string) error {
	if label == FallbackCategory {
		return ErrFallbackCategory
	}
	i := slices.Index(s.labels, label)
	if i < 0 {
		return ErrCategoryNotFound
	}
	s.labels = slices.Delete(s.labels, i, i+1)
	return nil
}

// Contains reports exact membership.
func (s *CategorySet) Contains(label string) bool {
	return slices.Contains(s.labels, label)
}

// Coerce returns label when it is a member and the fallback otherwise.
func (s *CategorySet) Coerce(label string) string {
	label = strings.TrimSpace(label)
	if s.Contains(label) {
		return label
	}
	return FallbackCategory
}

// First returns the first label in display order.
func (s *CategorySet) First() string {
	if len(s.labels) == 0 {
		return FallbackCategory
	}
	return s.labels[0]
}

// Labels returns a copy of the labels in display order.
func (s *CategorySet) Labels() []string {
	return slices.Clone(s.labels)
}

// Len returns the number of labels.
func (s *CategorySet) Len() int {
	return len(s.labels)
}
