package wayland_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wlshot/internal/wayland"
	"github.com/example/wlshot/internal/wayland/wltest"
)

func TestConnectCollectsGlobals(t *testing.T) {
	tr := wltest.New(wltest.StandardGlobals()...)

	s, err := wayland.Connect(tr.Dialer(), "", nil)
	require.NoError(t, err)

	outputs := s.Globals(wayland.OutputInterface)
	require.Len(t, outputs, 1)
	assert.Equal(t, uint32(2), outputs[0].Name)
	assert.Equal(t, 1, tr.Roundtrips)
}

func TestConnectDialFailure(t *testing.T) {
	sentinel := errors.New("no socket")
	dial := func(string) (wayland.Transport, error) { return nil, sentinel }

	_, err := wayland.Connect(dial, "wayland-9", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrConnection)
	assert.ErrorIs(t, err, sentinel)
}

func TestConnectInitialRoundtripFailureCloses(t *testing.T) {
	tr := wltest.New()
	tr.RoundtripErr = errors.New("broken pipe")

	_, err := wayland.Connect(tr.Dialer(), "", nil)
	assert.ErrorIs(t, err, wayland.ErrConnection)
	assert.True(t, tr.Closed)
}

func TestRoundtripDeliversInOrderAndTracksRegistry(t *testing.T) {
	tr := wltest.New(wltest.StandardGlobals()...)
	s, err := wayland.Connect(tr.Dialer(), "", nil)
	require.NoError(t, err)

	tr.Push(
		wayland.FrameBuffer{Frame: 9, Width: 1},
		wayland.GlobalRemoved{Name: 2},
		wayland.FrameBuffer{Frame: 9, Width: 2},
		wayland.GlobalAdded{Global: wayland.Global{Name: 7, Interface: wayland.OutputInterface, Version: 3}},
		wayland.FrameBufferDone{Frame: 9},
	)
	var got []wayland.Event
	require.NoError(t, s.Roundtrip(func(ev wayland.Event) { got = append(got, ev) }))

	assert.Equal(t, []wayland.Event{
		wayland.FrameBuffer{Frame: 9, Width: 1},
		wayland.FrameBuffer{Frame: 9, Width: 2},
		wayland.FrameBufferDone{Frame: 9},
	}, got)
	outputs := s.Globals(wayland.OutputInterface)
	require.Len(t, outputs, 1)
	assert.Equal(t, uint32(7), outputs[0].Name)
}

func TestBindMissingGlobal(t *testing.T) {
	tr := wltest.New(wayland.Global{Name: 1, Interface: wayland.ShmInterface, Version: 1})
	s, err := wayland.Connect(tr.Dialer(), "", nil)
	require.NoError(t, err)

	_, err = s.Bind(wayland.ScreencopyManagerInterface, 3, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrMissingGlobal)
	assert.Contains(t, err.Error(), wayland.ScreencopyManagerInterface)
	assert.Empty(t, tr.Binds)
}

func TestBindRejectsOldVersion(t *testing.T) {
	tr := wltest.New(wayland.Global{Name: 3, Interface: wayland.ScreencopyManagerInterface, Version: 1})
	s, err := wayland.Connect(tr.Dialer(), "", nil)
	require.NoError(t, err)

	_, err = s.Bind(wayland.ScreencopyManagerInterface, 3, 3)
	assert.ErrorIs(t, err, wayland.ErrMissingGlobal)
}

func TestBindCapsVersion(t *testing.T) {
	tr := wltest.New(wayland.Global{Name: 2, Interface: wayland.OutputInterface, Version: 4})
	s, err := wayland.Connect(tr.Dialer(), "", nil)
	require.NoError(t, err)

	id, err := s.Bind(wayland.OutputInterface, 2, 3)
	require.NoError(t, err)
	require.Len(t, tr.Binds, 1)
	assert.Equal(t, id, tr.Binds[0].ID)
	assert.Equal(t, uint32(3), tr.Binds[0].Version)
}
