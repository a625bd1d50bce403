package transfer

import (
	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/frame"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
)

// Sink receives chunks. PutChunk must block until the transport has
// acknowledged the chunk.
type Sink interface {
	PutChunk(chunk Chunk) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(chunk Chunk) error

// PutChunk calls f
func (f SinkFunc) PutChunk(chunk Chunk) error {
	return f(chunk)
}

// Emit sends the plan's chunks to sink in order, stopping at the first failure
func Emit(p *Plan, sink Sink) error {
	log := logger.WithComponent("transfer")

	sent := 0
	for chunk := range p.All() {
		if chunk.Rows == 0 {
			return errs.New(errs.ChunkTooSmall, "chunk at row %d has no rows", chunk.DstY)
		}
		if err := sink.PutChunk(chunk); err != nil {
			return errs.Wrap(err, errs.TransmissionFailed,
				"Failed to transmit rows %d-%d", chunk.DstY, chunk.DstY+int32(chunk.Rows)-1)
		}
		sent++
	}

	log.Debug().
		Int("chunks", sent).
		Uint32("rows_per_chunk", p.RowsPerChunk()).
		Msg("Frame transmitted")

	return nil
}

// Transmit plans buf against the transport limits and emits it to sink
func Transmit(buf *frame.PixelBuffer, maxPayload, overhead int, sink Sink) error {
	p, err := NewPlan(buf, maxPayload, overhead)
	if err != nil {
		return err
	}

	logger.WithComponent("transfer").Debug().
		Int("bytes", buf.Len()).
		Uint32("stride", buf.Stride).
		Int("max_payload", maxPayload).
		Uint32("rows_per_chunk", p.RowsPerChunk()).
		Int("chunks", p.Count()).
		Msg("Transmission planned")

	return Emit(p, sink)
}
