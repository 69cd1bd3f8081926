package summary

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hltas-record/hltas-record/internal/hltas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScript() *hltas.Script {
	s := hltas.NewScript()
	s.Properties.Set("demo", "bhop")
	s.Append(&hltas.FrameBulk{
		Movement:       hltas.MovementKeys{Forward: true},
		FrameTime:      "0.5",
		Count:          2,
		ConsoleCommand: "cl_forwardspeed 320",
	})
	s.Append(hltas.Comment(" landing"))
	s.Append(&hltas.FrameBulk{FrameTime: "0.25", Count: 1})
	return s
}

func TestBuild(t *testing.T) {
	sum := Build("run.hltas", testScript())

	assert.Equal(t, "run.hltas", sum.File)
	assert.Equal(t, 1, sum.Properties)
	assert.Equal(t, 2, sum.FrameBulks)
	assert.Equal(t, uint64(3), sum.Frames)
	assert.Equal(t, 0, sum.Pending)
	assert.InDelta(t, 1.25, sum.TotalTime, 1e-12)
	assert.Equal(t, 1, sum.Commands)
	assert.Len(t, sum.Digest, 16)
}

func TestBuild_DigestFollowsContent(t *testing.T) {
	a := Build("a", testScript())
	b := Build("b", testScript())
	assert.Equal(t, a.Digest, b.Digest)

	changed := testScript()
	changed.FrameBulks()[1].Actions.Jump = true
	assert.NotEqual(t, a.Digest, Build("a", changed).Digest)

	text, err := hltas.Format(testScript())
	require.NoError(t, err)
	assert.Equal(t, Digest(text), a.Digest)
}

func TestBuild_Pending(t *testing.T) {
	s := testScript()
	s.Append(hltas.NewFrameBulk())

	sum := Build("live", s)
	assert.Equal(t, 3, sum.FrameBulks)
	assert.Equal(t, 1, sum.Pending)
	assert.InDelta(t, 1.25, sum.TotalTime, 1e-12)
	assert.Empty(t, sum.Digest)
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name string
		sum  Summary
		want string
	}{
		{
			name: "empty",
			sum:  Summary{File: "empty.hltas"},
			want: "empty.hltas: 0 frame bulk(s), 0 frame(s), 0s\n",
		},
		{
			name: "full",
			sum: Summary{
				File: "run.hltas", FrameBulks: 2, Frames: 3, TotalTime: 1.25,
				Commands: 1, Pending: 1, Digest: "00000000deadbeef",
			},
			want: "run.hltas: 2 frame bulk(s), 3 frame(s), 1.25s, 1 with commands, 1 pending [00000000deadbeef]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatText(&buf, &tt.sum)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, Build("run.hltas", testScript())))

	var parsed Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "run.hltas", parsed.File)
	assert.Equal(t, uint64(3), parsed.Frames)
	assert.Equal(t, 1.25, parsed.TotalTime)
	assert.NotEmpty(t, parsed.Digest)
}

func TestFormatJSON_OmitsEmptyDigest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, &Summary{File: "x"}))
	assert.NotContains(t, buf.String(), "digest")
}
