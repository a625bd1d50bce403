package transfer

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrame(t *testing.T, width, height, stride uint32) *frame.PixelBuffer {
	t.Helper()
	pix := make([]byte, int(stride)*int(height))
	for i := range pix {
		pix[i] = byte(i * 31)
	}
	buf, err := frame.New(width, height, stride, pix)
	require.NoError(t, err)
	return buf
}

type recordingSink struct {
	chunks []Chunk
	failAt int
	err    error
}

func (s *recordingSink) PutChunk(c Chunk) error {
	if s.err != nil && len(s.chunks) == s.failAt {
		return s.err
	}
	s.chunks = append(s.chunks, c)
	return nil
}

func TestPlanFullHD(t *testing.T) {
	tests := []struct {
		name      string
		height    uint32
		wantCount int
		wantLast  uint32
	}{
		{"dividing", 1080, 135, 8},
		{"non-dividing", 1079, 135, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newFrame(t, 1920, tt.height, 7680)

			p, err := NewPlan(buf, 65536, 18)
			require.NoError(t, err)
			assert.Equal(t, uint32(8), p.RowsPerChunk())
			assert.Equal(t, tt.wantCount, p.Count())

			chunks := p.Chunks()
			require.Len(t, chunks, tt.wantCount)
			last := chunks[len(chunks)-1]
			assert.Equal(t, tt.wantLast, last.Rows)
			assert.Equal(t, int32(134*8), last.DstY)
			assert.Len(t, last.Data, int(tt.wantLast)*7680)
		})
	}
}

func TestPlanSmallBufferIsSingleChunk(t *testing.T) {
	buf := newFrame(t, 4, 4, 16)

	for _, maxPayload := range []int{65, 100, 1 << 20} {
		p, err := NewPlan(buf, maxPayload, PutImageOverhead)
		require.NoError(t, err)

		chunks := p.Chunks()
		require.Len(t, chunks, 1)
		assert.Equal(t, int32(0), chunks[0].DstY)
		assert.Equal(t, uint32(4), chunks[0].Rows)
		assert.Equal(t, buf.Pix, chunks[0].Data)
	}
}

func TestPlanChunkTooSmall(t *testing.T) {
	buf := newFrame(t, 100, 10, 400)

	tests := []struct {
		name       string
		maxPayload int
		overhead   int
	}{
		{"stride exceeds capacity", 400, 24},
		{"one byte short", 423, 24},
		{"overhead exceeds payload", 10, 24},
		{"zero payload", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			err := Transmit(buf, tt.maxPayload, tt.overhead, sink)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ChunkTooSmall)
			assert.Empty(t, sink.chunks)
		})
	}

	p, err := NewPlan(buf, 424, 24)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p.RowsPerChunk())
}

func TestPlanEmptyFrame(t *testing.T) {
	_, err := NewPlan(&frame.PixelBuffer{Width: 10}, 100, 24)
	assert.ErrorIs(t, err, errs.ChunkTooSmall)
}

func TestPlanPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for iter := 0; iter < 300; iter++ {
		width := uint32(1 + rng.IntN(300))
		height := uint32(1 + rng.IntN(200))
		stride := width*frame.BytesPerPixel + uint32(rng.IntN(3))*4
		overhead := rng.IntN(32)
		maxPayload := overhead + int(stride)*(1+rng.IntN(20)) + rng.IntN(int(stride))
		buf := newFrame(t, width, height, stride)

		p, err := NewPlan(buf, maxPayload, overhead)
		require.NoError(t, err)

		var (
			joined []byte
			rows   uint32
			nextY  int32
		)
		for c := range p.All() {
			require.GreaterOrEqual(t, c.Rows, uint32(1))
			require.LessOrEqual(t, c.Rows, p.RowsPerChunk())
			require.Equal(t, nextY, c.DstY)
			require.Len(t, c.Data, int(c.Rows)*int(stride))
			if buf.Len() >= maxPayload {
				require.LessOrEqual(t, len(c.Data)+overhead, maxPayload)
			}
			joined = append(joined, c.Data...)
			rows += c.Rows
			nextY += int32(c.Rows)
		}

		require.Equal(t, height, rows)
		require.True(t, bytes.Equal(buf.Pix, joined), "iter %d: reassembled buffer differs", iter)
	}
}

func TestAllStopsEarly(t *testing.T) {
	buf := newFrame(t, 1, 10, 4)
	p, err := NewPlan(buf, 9, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(2), p.RowsPerChunk())

	seen := 0
	for range p.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestEmitStopsAtFirstFailure(t *testing.T) {
	buf := newFrame(t, 1, 10, 4)
	sink := &recordingSink{failAt: 2, err: errors.New("BadLength")}

	err := Transmit(buf, 9, 0, sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.TransmissionFailed)
	assert.Equal(t, "Failed to transmit rows 4-5: BadLength", err.Error())
	assert.Len(t, sink.chunks, 2)
}

func TestEmitInOrder(t *testing.T) {
	buf := newFrame(t, 2, 7, 8)
	var got []int32
	sink := SinkFunc(func(c Chunk) error {
		got = append(got, c.DstY)
		return nil
	})

	require.NoError(t, Transmit(buf, 20, 4, sink))
	assert.Equal(t, []int32{0, 2, 4, 6}, got)
}
