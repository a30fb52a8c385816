//go:build unix

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Giulio2002/memio"
	"github.com/Giulio2002/memio/internal/config"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

type stats struct {
	In       int64  // bytes read from the input
	Out      int64  // bytes handed to the sink
	RingSize int    // ring capacity after page rounding
	Digest   []byte // blake3 of the input, when requested
}

// countingWriter counts what passes through to w.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// copyStream pumps in through a ring-backed fifo into sink, compressing and
// hashing on the way as cfg asks. The sink is flushed but not closed.
func copyStream(in io.Reader, sink *memio.Sink, cfg config.Config) (stats, error) {
	ring, err := memio.NewRing(cfg.RingSize)
	if err != nil {
		return stats{}, err
	}
	defer ring.Close()
	fifo := memio.NewFifo(ring)

	counted := &countingWriter{w: sink}
	var encoder io.WriteCloser
	switch cfg.Compress {
	case config.CompressZstd:
		enc, err := zstd.NewWriter(counted)
		if err != nil {
			return stats{}, fmt.Errorf("zstd encoder: %w", err)
		}
		encoder = enc
	case config.CompressLZ4:
		encoder = lz4.NewWriter(counted)
	}

	var out io.Writer = counted
	if encoder != nil {
		out = encoder
	}
	var hasher *blake3.Hasher
	if cfg.Digest {
		hasher = blake3.New()
		out = io.MultiWriter(hasher, out)
	}

	var read int64
	for {
		n, rerr := fifo.ReadFrom(in)
		read += n
		if _, werr := fifo.WriteTo(out); werr != nil {
			return stats{}, werr
		}
		if rerr == nil {
			break
		}
		if !errors.Is(rerr, memio.ErrFull) {
			return stats{}, rerr
		}
	}

	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return stats{}, err
		}
	}
	if err := sink.Flush(); err != nil {
		return stats{}, err
	}

	s := stats{In: read, Out: counted.n, RingSize: ring.Size()}
	if hasher != nil {
		s.Digest = hasher.Sum(nil)
	}
	return s, nil
}
