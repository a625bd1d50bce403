package transfer

import (
	"iter"

	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
)

// PutImageOverhead is the size of an X11 PutImage request header in bytes
const PutImageOverhead = 24

// Chunk is a row-aligned slice of a frame sized to fit one request.
// Data aliases the frame's pixels and covers exactly Rows*stride bytes.
type Chunk struct {
	DstY int32
	Rows uint32
	Data []byte
}

// Plan describes how a frame is split into chunks. Chunks are produced
// lazily, one at a time, by All.
type Plan struct {
	frame        *frame.PixelBuffer
	rowsPerChunk uint32
}

// NewPlan derives the chunking for buf under a transport that accepts at
// most maxPayload bytes per message, overhead of which is taken by the
// message header. A buffer smaller than maxPayload is sent whole.
func NewPlan(buf *frame.PixelBuffer, maxPayload, overhead int) (*Plan, error) {
	if buf.Height == 0 || buf.Stride == 0 {
		return nil, errs.New(errs.ChunkTooSmall, "frame %dx%d has no rows to transmit", buf.Width, buf.Height)
	}

	if buf.Len() < maxPayload {
		return &Plan{frame: buf, rowsPerChunk: buf.Height}, nil
	}

	capacity := maxPayload - overhead
	if capacity < int(buf.Stride) {
		return nil, errs.New(errs.ChunkTooSmall,
			"row stride of %d bytes exceeds request capacity of %d bytes (max %d, overhead %d)",
			buf.Stride, max(capacity, 0), maxPayload, overhead)
	}

	return &Plan{frame: buf, rowsPerChunk: uint32(capacity / int(buf.Stride))}, nil
}

// RowsPerChunk returns the number of rows in every chunk but possibly the last
func (p *Plan) RowsPerChunk() uint32 {
	return p.rowsPerChunk
}

// Count returns the number of chunks the plan yields
func (p *Plan) Count() int {
	return int((p.frame.Height + p.rowsPerChunk - 1) / p.rowsPerChunk)
}

// All yields the chunks in increasing DstY order. Each chunk is computed only
// after the consumer has finished with the previous one.
func (p *Plan) All() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		stride := int(p.frame.Stride)
		for y := uint32(0); y < p.frame.Height; {
			rows := min(p.rowsPerChunk, p.frame.Height-y)
			start := int(y) * stride
			end := start + int(rows)*stride
			if !yield(Chunk{DstY: int32(y), Rows: rows, Data: p.frame.Pix[start:end:end]}) {
				return
			}
			y += rows
		}
	}
}

// Chunks collects every chunk of the plan
func (p *Plan) Chunks() []Chunk {
	chunks := make([]Chunk, 0, p.Count())
	for c := range p.All() {
		chunks = append(chunks, c)
	}
	return chunks
}
