// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tabs

import (
	"context"
	"errors"
	"sort"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/herder-tui/internal/surface"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

type fakeLister struct {
	ids   []string
	err   error
	calls int
}

func (f *fakeLister) AllowedTabs(ctx context.Context) ([]string, error) {
	f.calls++
	return f.ids, f.err
}

type refreshMsg struct{ view string }

func newTestController(lister Lister, permissioned bool) (*Controller, *surface.Surface) {
	s := surface.New()
	var views []View
	for _, id := range []string{Nodes, Prompts, History, OwnHistory} {
		id := id
		views = append(views, View{
			ID:      id,
			Region:  s.Region(id),
			Refresh: func() tea.Cmd { return func() tea.Msg { return refreshMsg{view: id} } },
		})
	}
	c := New(lister, Config{
		Views:        views,
		Bar:          s.Region("tabs"),
		DefaultTab:   Prompts,
		Permissioned: permissioned,
		Theme:        styles.NewThemeNamed("plain"),
	})
	return c, s
}

// load runs Initialize and applies its result, returning the activation
// command.
func load(t *testing.T, c *Controller) tea.Cmd {
	t.Helper()
	cmd := c.Initialize(context.Background())
	require.NotNil(t, cmd)
	msg, ok := cmd().(TabsLoadedMsg)
	require.True(t, ok)
	return c.Apply(msg)
}

func TestController_ExposesExactlyPermittedTabs(t *testing.T) {
	all := []string{Nodes, Prompts, History, OwnHistory}
	lists := [][]string{
		{},
		{Prompts},
		{Nodes, History},
		{OwnHistory, Nodes},
		{Nodes, Prompts, History, OwnHistory},
		{History, "Admin"},
	}

	for _, list := range lists {
		c, _ := newTestController(&fakeLister{ids: list}, true)
		load(t, c)

		want := map[string]bool{}
		for _, id := range list {
			if id != "Admin" {
				want[id] = true
			}
		}

		var got []string
		for _, trig := range c.Triggers() {
			got = append(got, trig.ID())
		}
		var wantIDs []string
		for id := range want {
			wantIDs = append(wantIDs, id)
		}
		sort.Strings(got)
		sort.Strings(wantIDs)
		assert.Equal(t, wantIDs, got, "permitted %v", list)

		records := c.Tabs()
		require.Len(t, records, len(all))
		for _, tab := range records {
			assert.Equal(t, want[tab.ID], tab.Permitted, "record for %s with %v", tab.ID, list)
		}

		for _, id := range all {
			_, hasTrigger := c.Trigger(id)
			assert.Equal(t, want[id], hasTrigger, "trigger for %s with %v", id, list)

			_, err := c.ActivateByID(id)
			if want[id] {
				assert.NoError(t, err)
				assert.Equal(t, id, c.Active())
			} else {
				assert.ErrorIs(t, err, ErrTabNotPermitted)
			}
		}
	}
}

func TestController_ActivatesDefaultTab(t *testing.T) {
	c, s := newTestController(&fakeLister{ids: []string{Nodes, Prompts}}, true)

	cmd := load(t, c)
	assert.Equal(t, Prompts, c.Active())
	assert.True(t, s.Region(Prompts).Visible())
	assert.False(t, s.Region(Nodes).Visible())

	require.NotNil(t, cmd)
	assert.Equal(t, refreshMsg{view: Prompts}, cmd())
}

func TestController_FallsBackToFirstPermitted(t *testing.T) {
	c, _ := newTestController(&fakeLister{ids: []string{History, Nodes}}, true)
	load(t, c)
	assert.Equal(t, Nodes, c.Active())
}

func TestController_ActivationShowsOneView(t *testing.T) {
	c, s := newTestController(&fakeLister{ids: []string{Nodes, Prompts, History}}, true)
	load(t, c)

	trig, ok := c.Trigger(History)
	require.True(t, ok)
	cmd := trig.Activate()
	assert.Equal(t, refreshMsg{view: History}, cmd())

	visible := 0
	for _, id := range []string{Nodes, Prompts, History, OwnHistory} {
		if s.Region(id).Visible() {
			visible++
		}
	}
	assert.Equal(t, 1, visible)
	assert.True(t, s.Region(History).Visible())
}

func TestController_InitializeOnce(t *testing.T) {
	lister := &fakeLister{ids: []string{Prompts}}
	c, _ := newTestController(lister, true)

	load(t, c)
	assert.Nil(t, c.Initialize(context.Background()))
	assert.Equal(t, 1, lister.calls)

	// A late second result cannot change the immutable tab set.
	assert.Nil(t, c.Apply(TabsLoadedMsg{IDs: []string{Nodes}}))
	_, ok := c.Trigger(Nodes)
	assert.False(t, ok)
}

func TestController_UnpermissionedSkipsFetch(t *testing.T) {
	lister := &fakeLister{err: errors.New("must not be called")}
	c, _ := newTestController(lister, false)

	load(t, c)
	assert.Equal(t, 0, lister.calls)
	assert.Len(t, c.Triggers(), 4)
	assert.Equal(t, Prompts, c.Active())
}

func TestController_FetchFailureIsVisibleAndRetryable(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	c, s := newTestController(lister, true)

	assert.Nil(t, load(t, c))
	assert.Error(t, c.Err())
	assert.Empty(t, c.Triggers())
	assert.Empty(t, c.Active())
	assert.Contains(t, s.Region("tabs").Content(), "could not load tabs")
	for _, id := range []string{Nodes, Prompts, History, OwnHistory} {
		assert.False(t, s.Region(id).Visible())
	}

	lister.err = nil
	lister.ids = []string{Prompts}
	cmd := c.Retry(context.Background())
	require.NotNil(t, cmd)
	c.Apply(cmd().(TabsLoadedMsg))

	assert.NoError(t, c.Err())
	assert.Equal(t, Prompts, c.Active())
	assert.Nil(t, c.Retry(context.Background()))
}

func TestController_CycleAndKeys(t *testing.T) {
	c, _ := newTestController(&fakeLister{ids: []string{Nodes, Prompts, History}}, true)
	load(t, c)

	c.Cycle(1)
	assert.Equal(t, History, c.Active())
	c.Cycle(1)
	assert.Equal(t, Nodes, c.Active())
	c.Cycle(-1)
	assert.Equal(t, History, c.Active())

	_, handled := c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}, Alt: true})
	assert.True(t, handled)
	assert.Equal(t, Prompts, c.Active())

	_, handled = c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}, Alt: true})
	assert.False(t, handled)
}
