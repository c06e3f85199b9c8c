package trim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/sfx"
	"github.com/dudk/sfx/effect"
	"github.com/dudk/sfx/trim"
)

// ramp returns n raw samples valued by their stream offset.
func ramp(offset, n int) []sfx.Sample {
	b := make([]sfx.Sample, n)
	for i := range b {
		b[i] = sfx.Sample(offset + i)
	}
	return b
}

func props(rate sfx.Frequency, channels int, wide sfx.Wide) sfx.Properties {
	return sfx.Properties{
		SampleRate: rate,
		Channels:   channels,
		Length:     wide.Raw(channels),
	}
}

// collect streams in through the effect in blocks and gathers the
// output until the input is exhausted or end-of-stream is reported.
func collect(t *testing.T, tr *trim.Trim, in []sfx.Sample, inBlock, outBlock int) ([]sfx.Sample, effect.Status) {
	t.Helper()
	var out []sfx.Sample
	var consumed sfx.Raw
	buf := make([]sfx.Sample, outBlock)
	for int(consumed) < len(in) {
		block := in[consumed:]
		if len(block) > inBlock {
			block = block[:inBlock]
		}
		res := tr.Flow(block, buf)
		out = append(out, buf[:res.Produced]...)
		consumed += res.Consumed
		if res.Status == effect.EndOfStream {
			return out, res.Status
		}
		if res.Consumed == 0 && res.Produced == 0 {
			t.Fatal("flow stalled")
		}
	}
	return out, effect.Continue
}

func TestKeepMiddle(t *testing.T) {
	tr, err := trim.New("10s", "20s")
	assert.Nil(t, err)

	out, res, err := tr.Start(props(100, 1, 30))
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	assert.Equal(t, sfx.Raw(10), out.Length)

	got, status := collect(t, tr, ramp(0, 30), 7, 5)
	assert.Equal(t, ramp(10, 10), got)
	assert.Equal(t, effect.EndOfStream, status)

	drained := tr.Drain(make([]sfx.Sample, 5))
	assert.Equal(t, sfx.Raw(0), drained.Produced)
	assert.Equal(t, effect.EndOfStream, drained.Status)
	assert.Nil(t, drained.Warning)
	assert.Nil(t, tr.Terminate())
}

func TestStereoUnits(t *testing.T) {
	tr, err := trim.New("3s", "6s")
	assert.Nil(t, err)

	out, res, err := tr.Start(props(100, 2, 10))
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	// 3 wide samples kept, 2 channels
	assert.Equal(t, sfx.Raw(6), out.Length)

	got, _ := collect(t, tr, ramp(0, 20), 20, 20)
	assert.Equal(t, ramp(6, 6), got)
}

func TestEmptyListPassesThrough(t *testing.T) {
	tr, err := trim.New()
	assert.Nil(t, err)

	out, res, err := tr.Start(props(100, 1, 30))
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	assert.Equal(t, sfx.Raw(30), out.Length)

	got, status := collect(t, tr, ramp(0, 30), 8, 8)
	assert.Equal(t, ramp(0, 30), got)
	assert.Equal(t, effect.Continue, status)
	assert.Nil(t, tr.Drain(nil).Warning)
}

func TestSingleZeroBypasses(t *testing.T) {
	tr, err := trim.New("0")
	assert.Nil(t, err)

	out, res, err := tr.Start(props(100, 2, 30))
	assert.Nil(t, err)
	assert.Equal(t, effect.Bypass, res)
	assert.Equal(t, props(100, 2, 30), out)
}

func TestOpenEndUnknownLength(t *testing.T) {
	tr, err := trim.New("5s")
	assert.Nil(t, err)

	in := props(100, 1, 0)
	in.Length = sfx.UnknownLength
	out, res, err := tr.Start(in)
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	assert.Equal(t, sfx.UnknownLength, out.Length)

	got, status := collect(t, tr, ramp(0, 20), 6, 6)
	assert.Equal(t, ramp(5, 15), got)
	assert.Equal(t, effect.Continue, status)
	assert.Nil(t, tr.Drain(nil).Warning)
}

func TestShortStreamWarns(t *testing.T) {
	tr, err := trim.New("5s", "100s")
	assert.Nil(t, err)

	in := props(100, 1, 0)
	in.Length = sfx.UnknownLength
	out, res, err := tr.Start(in)
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	assert.Equal(t, sfx.Raw(95), out.Length)

	got, status := collect(t, tr, ramp(0, 50), 50, 50)
	assert.Equal(t, ramp(5, 45), got)
	assert.Equal(t, effect.Continue, status)

	drained := tr.Drain(nil)
	assert.Equal(t, effect.EndOfStream, drained.Status)
	if assert.NotNil(t, drained.Warning) {
		warn, ok := drained.Warning.(*effect.ShortStreamWarning)
		if assert.True(t, ok) {
			assert.Equal(t, 1, warn.Unreached)
		}
	}
}

func TestEndRelative(t *testing.T) {
	fromEnd, err := trim.New("-10s")
	assert.Nil(t, err)
	absolute, err := trim.New("=90s")
	assert.Nil(t, err)

	endOut, res, err := fromEnd.Start(props(100, 1, 100))
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	absOut, _, err := absolute.Start(props(100, 1, 100))
	assert.Nil(t, err)
	assert.Equal(t, absOut, endOut)
	assert.Equal(t, sfx.Raw(10), endOut.Length)

	endGot, _ := collect(t, fromEnd, ramp(0, 100), 9, 9)
	absGot, _ := collect(t, absolute, ramp(0, 100), 9, 9)
	assert.Equal(t, absGot, endGot)
	assert.Equal(t, ramp(90, 10), endGot)
}

func TestRelativeToPrevious(t *testing.T) {
	relative, err := trim.New("10s", "10s")
	assert.Nil(t, err)
	absolute, err := trim.New("=10s", "=20s")
	assert.Nil(t, err)

	relOut, _, err := relative.Start(props(100, 1, 30))
	assert.Nil(t, err)
	absOut, _, err := absolute.Start(props(100, 1, 30))
	assert.Nil(t, err)
	assert.Equal(t, absOut, relOut)

	relGot, _ := collect(t, relative, ramp(0, 30), 30, 30)
	assert.Equal(t, ramp(10, 10), relGot)
}

func TestTimeExpressions(t *testing.T) {
	tr, err := trim.New("0:01", "0:02")
	assert.Nil(t, err)

	out, res, err := tr.Start(props(100, 1, 300))
	assert.Nil(t, err)
	assert.Equal(t, effect.Ready, res)
	assert.Equal(t, sfx.Raw(100), out.Length)

	got, _ := collect(t, tr, ramp(0, 300), 64, 64)
	assert.Equal(t, ramp(100, 100), got)
}

func TestStartErrors(t *testing.T) {
	tests := []struct {
		name      string
		positions []string
		stream    sfx.Wide
		unknown   bool
		expected  error
	}{
		{
			name:      "out of order",
			positions: []string{"=10s", "=5s"},
			stream:    30,
			expected:  &effect.OrderingError{Position: 2},
		},
		{
			name:      "end anchor without length",
			positions: []string{"-5s"},
			unknown:   true,
			expected:  effect.ErrUnknownLength,
		},
		{
			name:      "first past end",
			positions: []string{"=40s"},
			stream:    30,
			expected:  &effect.BoundsError{Position: 1, Offset: 40, Length: 30},
		},
		{
			name:      "last past end",
			positions: []string{"=10s", "=40s"},
			stream:    30,
			expected:  &effect.BoundsError{Position: 2, Offset: 40, Length: 30},
		},
		{
			name:      "end anchor before start",
			positions: []string{"-50s"},
			stream:    30,
			expected:  &effect.BoundsError{Position: 1, Offset: -20, Length: 30},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr, err := trim.New(test.positions...)
			assert.Nil(t, err)
			in := props(100, 1, test.stream)
			if test.unknown {
				in.Length = sfx.UnknownLength
			}
			_, _, err = tr.Start(in)
			assert.Equal(t, test.expected, err)
		})
	}
}

func TestConfigureErrors(t *testing.T) {
	for _, expr := range []string{"", "abc", "1:2:3:4", "1.5:30", "=-5s"} {
		t.Run(expr, func(t *testing.T) {
			_, err := trim.New(expr)
			if assert.NotNil(t, err) {
				_, ok := err.(*effect.UsageError)
				assert.True(t, ok)
			}
		})
	}
}

func TestDeclaredLengthMatchesEmitted(t *testing.T) {
	tests := [][]string{
		{"10s", "20s"},
		{"=5s", "=5s", "=12s"},
		{"0s", "30s"},
		{"25s"},
		{},
	}
	for _, positions := range tests {
		tr, err := trim.New(positions...)
		assert.Nil(t, err)
		out, res, err := tr.Start(props(100, 2, 50))
		assert.Nil(t, err)
		assert.Equal(t, effect.Ready, res)

		got, _ := collect(t, tr, ramp(0, 100), 16, 16)
		assert.Equal(t, out.Length, sfx.Raw(len(got)))
	}
}

func TestSkipStartEquivalence(t *testing.T) {
	skipped, err := trim.New("10s", "20s")
	assert.Nil(t, err)
	streamed, err := trim.New("10s", "20s")
	assert.Nil(t, err)

	_, _, err = skipped.Start(props(100, 2, 30))
	assert.Nil(t, err)
	_, _, err = streamed.Start(props(100, 2, 30))
	assert.Nil(t, err)

	// 10 wide samples, 2 channels
	assert.Equal(t, sfx.Raw(20), skipped.StartSkip())
	skipped.SkipStart()

	skippedGot, skippedStatus := collect(t, skipped, ramp(20, 40), 12, 12)
	streamedGot, streamedStatus := collect(t, streamed, ramp(0, 60), 12, 12)
	assert.Equal(t, streamedGot, skippedGot)
	assert.Equal(t, streamedStatus, skippedStatus)
	assert.Equal(t, ramp(20, 20), skippedGot)
}
