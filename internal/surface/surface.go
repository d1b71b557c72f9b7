// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package surface is the rendering surface the controllers draw into.
//
// A Surface is a set of named regions plus a modal layer. Controllers are
// handed the regions they own at construction and never look anything up
// by name afterwards; the application shell composes the visible regions
// into the final frame.
package surface

import (
	"sort"
)

// =============================================================================
// REGION
// =============================================================================

// Region is one independently visible area of the screen.
type Region struct {
	name    string
	visible bool
	content string
}

// Name returns the region name.
func (r *Region) Name() string { return r.name }

// Show makes the region visible.
func (r *Region) Show() { r.visible = true }

// Hide makes the region invisible. Its content is kept.
func (r *Region) Hide() { r.visible = false }

// Visible reports whether the region is shown.
func (r *Region) Visible() bool { return r.visible }

// Set replaces the region content wholesale.
func (r *Region) Set(content string) { r.content = content }

// Content returns the current content.
func (r *Region) Content() string { return r.content }

// =============================================================================
// MODAL
// =============================================================================

// Modal is a dialog attached to the surface's modal layer.
type Modal struct {
	ID      string
	Title   string
	Body    string
	Error   string
	visible bool
}

// Visible reports whether the modal is currently shown.
func (m *Modal) Visible() bool { return m.visible }

// =============================================================================
// SURFACE
// =============================================================================

// Surface owns all regions and modals of one application window.
type Surface struct {
	regions map[string]*Region
	order   []string
	modals  map[string]*Modal
	seq     map[string]int
	next    int
}

// New creates an empty surface.
func New() *Surface {
	return &Surface{
		regions: make(map[string]*Region),
		modals:  make(map[string]*Modal),
		seq:     make(map[string]int),
	}
}

// Region returns the named region, creating it hidden on first use.
func (s *Surface) Region(name string) *Region {
	if r, ok := s.regions[name]; ok {
		return r
	}
	r := &Region{name: name}
	s.regions[name] = r
	s.order = append(s.order, name)
	return r
}

// Regions returns every region in creation order.
func (s *Surface) Regions() []*Region {
	out := make([]*Region, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.regions[name])
	}
	return out
}

// AddModal attaches a modal with id, returning the existing one if present.
// A new modal starts hidden.
func (s *Surface) AddModal(id string) *Modal {
	if m, ok := s.modals[id]; ok {
		return m
	}
	m := &Modal{ID: id}
	s.modals[id] = m
	s.next++
	s.seq[id] = s.next
	return m
}

// Modal returns the modal with id.
func (s *Surface) Modal(id string) (*Modal, bool) {
	m, ok := s.modals[id]
	return m, ok
}

// ShowModal makes a modal visible and hides every other one; only one
// dialog is on screen at a time.
func (s *Surface) ShowModal(id string) {
	m, ok := s.modals[id]
	if !ok {
		return
	}
	for _, other := range s.modals {
		other.visible = false
	}
	m.visible = true
}

// HideModal hides a modal without detaching it.
func (s *Surface) HideModal(id string) {
	if m, ok := s.modals[id]; ok {
		m.visible = false
	}
}

// RemoveModal detaches a modal from the surface.
func (s *Surface) RemoveModal(id string) {
	delete(s.modals, id)
	delete(s.seq, id)
}

// ActiveModal returns the visible modal, if any.
func (s *Surface) ActiveModal() (*Modal, bool) {
	for _, m := range s.modals {
		if m.visible {
			return m, true
		}
	}
	return nil, false
}

// Overlay reports whether a modal currently covers the regions.
func (s *Surface) Overlay() bool {
	_, ok := s.ActiveModal()
	return ok
}

// ModalIDs returns the ids of all attached modals in attach order.
func (s *Surface) ModalIDs() []string {
	ids := make([]string, 0, len(s.modals))
	for id := range s.modals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return s.seq[ids[i]] < s.seq[ids[j]] })
	return ids
}
