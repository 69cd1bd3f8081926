package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtons_Has(t *testing.T) {
	bs := InForward | InJump

	assert.True(t, bs.Has(InForward))
	assert.True(t, bs.Has(InJump))
	assert.True(t, bs.Has(InForward|InJump))
	assert.False(t, bs.Has(InBack))
	assert.False(t, bs.Has(InForward|InBack))
}

func TestButtons_Values(t *testing.T) {
	assert.Equal(t, Buttons(1), InAttack)
	assert.Equal(t, Buttons(8), InForward)
	assert.Equal(t, Buttons(512), InMoveLeft)
	assert.Equal(t, Buttons(1024), InMoveRight)
	assert.Equal(t, Buttons(2048), InAttack2)
	assert.Equal(t, Buttons(8192), InReload)
}

func TestButtons_StringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		bs   Buttons
		want string
	}{
		{name: "none", bs: 0, want: "none"},
		{name: "single", bs: InDuck, want: "duck"},
		{name: "several", bs: InForward | InMoveLeft | InAttack2, want: "forward+moveleft+attack2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bs.String())

			parsed, err := ParseButtons(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.bs, parsed)
		})
	}
}

func TestParseButtons_Unknown(t *testing.T) {
	_, err := ParseButtons("forward+sprint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown button "sprint"`)
}

func TestUserCmd_Accessors(t *testing.T) {
	cmd := UserCmd{Msec: 10, ViewAngles: mgl32.Vec3{-15, 90, 0}}

	assert.Equal(t, float32(-15), cmd.Pitch())
	assert.Equal(t, float32(90), cmd.Yaw())
	assert.True(t, cmd.ConsumesTime())

	cmd.Msec = 0
	assert.False(t, cmd.ConsumesTime())
}

func TestClientState_Simulating(t *testing.T) {
	for s := ClientDedicated; s <= ClientActive; s++ {
		want := s == ClientUninitialized || s == ClientActive
		assert.Equal(t, want, s.Simulating(), s.String())
	}
}

func TestCapabilities(t *testing.T) {
	caps := AllCapabilities()
	assert.True(t, caps.Enabled())
	assert.True(t, caps.CanObserve())

	caps.CmdStart = false
	assert.True(t, caps.Enabled())
	assert.False(t, caps.CanObserve())

	caps = AllCapabilities()
	caps.HostFrametime = false
	assert.False(t, caps.Enabled())
}
