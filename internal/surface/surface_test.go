// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegion_Lifecycle(t *testing.T) {
	s := New()
	r := s.Region("nodes")

	assert.False(t, r.Visible())
	assert.Same(t, r, s.Region("nodes"))

	r.Set("cards")
	r.Show()
	assert.True(t, r.Visible())
	r.Hide()
	assert.Equal(t, "cards", r.Content())
}

func TestSurface_RegionOrder(t *testing.T) {
	s := New()
	s.Region("b")
	s.Region("a")
	s.Region("b")

	regions := s.Regions()
	assert.Len(t, regions, 2)
	assert.Equal(t, "b", regions[0].Name())
	assert.Equal(t, "a", regions[1].Name())
}

func TestSurface_Modals(t *testing.T) {
	s := New()
	first := s.AddModal("feedback-1")
	s.AddModal("feedback-2")
	assert.Same(t, first, s.AddModal("feedback-1"))
	assert.False(t, s.Overlay())

	s.ShowModal("feedback-1")
	s.ShowModal("feedback-2")
	active, ok := s.ActiveModal()
	assert.True(t, ok)
	assert.Equal(t, "feedback-2", active.ID)
	assert.False(t, first.Visible())

	s.RemoveModal("feedback-2")
	assert.False(t, s.Overlay())
	assert.Equal(t, []string{"feedback-1"}, s.ModalIDs())

	_, ok = s.Modal("feedback-2")
	assert.False(t, ok)
}
