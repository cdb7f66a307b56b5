package wpgp

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Mattddixo/wpgp/internal/container"
	"github.com/Mattddixo/wpgp/internal/stream"
)

// Stream delivers the output of an encrypt or decrypt pipeline.
//
// C is closed exactly once when the pipeline ends. Err then reports the
// reason it ended, or nil on success. A consumer that stops reading early
// must call Close to release the pipeline.
type Stream struct {
	C <-chan []byte

	cancel context.CancelFunc
	done   chan struct{}
	err    error
	once   sync.Once
}

// Err waits for the pipeline to end and returns its error.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Close aborts the pipeline, drains C and returns the pipeline error. An
// aborted pipeline reports context.Canceled.
func (s *Stream) Close() error {
	s.once.Do(func() {
		s.cancel()
		for range s.C {
		}
	})
	return s.Err()
}

// emitFunc hands one chunk to the consumer.
type emitFunc func([]byte) error

func runStream(ctx context.Context, fn func(ctx context.Context, emit emitFunc) error) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []byte)
	s := &Stream{
		C:      ch,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()

		emit := func(b []byte) error {
			if len(b) == 0 {
				return nil
			}
			select {
			case ch <- b:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		s.err = fn(ctx, emit)
		close(s.done)
		close(ch)
	}()
	return s
}

// failedStream returns a Stream that has already ended with err.
func failedStream(err error) *Stream {
	ch := make(chan []byte)
	close(ch)
	done := make(chan struct{})
	close(done)
	return &Stream{C: ch, cancel: func() {}, done: done, err: err}
}

// drain writes every chunk of s to dst.
func drain(s *Stream, dst io.Writer) error {
	for chunk := range s.C {
		if _, err := dst.Write(chunk); err != nil {
			s.Close()
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return s.Err()
}

// EncryptStream encrypts src to id as it is read. The concatenated chunks
// are identical in layout to EncryptMessage output: body first, then the
// wrapped header, digest and trailer once src reaches EOF.
func EncryptStream(ctx context.Context, id *Identity, src io.Reader, opts ...Option) *Stream {
	o := newOptions(opts)
	holder, err := id.Share()
	if err != nil {
		return failedStream(err)
	}
	return runStream(ctx, func(ctx context.Context, emit emitFunc) error {
		defer holder.Close()

		s, err := newSealer(holder)
		if err != nil {
			return err
		}

		buf := make([]byte, o.chunkSize)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			n, rerr := src.Read(buf)
			if n > 0 {
				out, err := s.enc.Advance(buf[:n])
				if err != nil {
					return err
				}
				if err := emit(out); err != nil {
					return err
				}
			}
			if errors.Is(rerr, io.EOF) {
				break
			}
			if rerr != nil {
				return fmt.Errorf("failed to read source: %w", rerr)
			}
		}

		tail, err := s.enc.Flush()
		if err != nil {
			return err
		}
		if err := emit(tail); err != nil {
			return err
		}
		closing, err := s.close()
		if err != nil {
			return err
		}
		if err := emit(closing); err != nil {
			return err
		}

		o.logger.Debug("encrypted stream", "plain_bytes", s.enc.PlainLen(), "body_bytes", s.enc.WireLen())
		return nil
	})
}

// EncryptTo runs EncryptStream and writes the container to dst.
func EncryptTo(ctx context.Context, id *Identity, dst io.Writer, src io.Reader, opts ...Option) error {
	return drain(EncryptStream(ctx, id, src, opts...), dst)
}

// DecryptStream decrypts a MESSAGE container read from src with the private
// key of id.
//
// By default the digest is checked before any plaintext is emitted, which
// reads the body twice. WithBestEffort emits plaintext in one pass and
// reports ErrIntegrity at the end instead.
//
// The trailer is read first, so src is used through io.ReaderAt when it
// offers a size (bytes.Reader, io.SectionReader, regular files). Other
// sources are copied to a temporary file first.
func DecryptStream(ctx context.Context, id *Identity, src io.Reader, opts ...Option) *Stream {
	o := newOptions(opts)
	holder, err := id.Share()
	if err != nil {
		return failedStream(err)
	}
	return runStream(ctx, func(ctx context.Context, emit emitFunc) error {
		defer holder.Close()

		ra, size, cleanup, err := randomAccess(ctx, src, o.tempDir)
		if err != nil {
			return err
		}
		defer cleanup()

		return decryptFrom(ctx, holder, ra, size, o, emit)
	})
}

// DecryptTo runs DecryptStream and writes the plaintext to dst.
func DecryptTo(ctx context.Context, id *Identity, dst io.Writer, src io.Reader, opts ...Option) error {
	return drain(DecryptStream(ctx, id, src, opts...), dst)
}

func decryptFrom(ctx context.Context, id *Identity, ra io.ReaderAt, size int64, o *options, emit emitFunc) error {
	if size < int64(container.TrailerSize) {
		return fmt.Errorf("%w: container shorter than trailer", ErrFormat)
	}

	raw := make([]byte, container.TrailerSize)
	if _, err := ra.ReadAt(raw, size-int64(container.TrailerSize)); err != nil {
		return fmt.Errorf("failed to read trailer: %w", err)
	}
	t, err := container.ParseTrailer(raw)
	if err != nil {
		return err
	}
	if err := t.Validate(uint64(size)); err != nil {
		return err
	}

	headerWire, err := readSegment(ra, t.Header)
	if err != nil {
		return err
	}
	digest, err := readSegment(ra, t.Hash)
	if err != nil {
		return err
	}
	body := io.NewSectionReader(ra, int64(t.Body.Start), int64(t.Body.Len()))

	if !o.bestEffort {
		sha := sha256.New()
		if _, err := io.Copy(sha, &ctxReader{ctx: ctx, r: body}); err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		sha.Write(headerWire)
		if subtle.ConstantTimeCompare(sha.Sum(nil), digest) != 1 {
			return ErrIntegrity
		}
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind body: %w", err)
		}
	}

	h, c, err := id.openMessageHeader(t.Mask, headerWire)
	if err != nil {
		return err
	}

	dec := stream.NewDecoder(t.Mask, c, int64(t.Body.Len()))
	buf := make([]byte, o.chunkSize)
	var plain int64
	for dec.Remaining() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := body.Read(buf[:min(int64(len(buf)), dec.Remaining())])
		if n > 0 {
			out, err := dec.Advance(buf[:n])
			if err != nil {
				return err
			}
			plain += int64(len(out))
			if err := emit(out); err != nil {
				return err
			}
		}
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("failed to read body: %w", rerr)
		}
		if n == 0 && rerr != nil {
			break
		}
	}

	if err := dec.Finish(); err != nil {
		return err
	}
	// The second check also catches a source modified between passes.
	if err := dec.Check(headerWire, digest); err != nil {
		return err
	}
	if plain != h.Size {
		return fmt.Errorf("%w: body is %d bytes, header declares %d", ErrFormat, plain, h.Size)
	}

	o.logger.Debug("decrypted stream", "plain_bytes", plain, "body_bytes", dec.Consumed(), "verified_first", !o.bestEffort)
	return nil
}

func readSegment(ra io.ReaderAt, seg container.Segment) ([]byte, error) {
	buf := make([]byte, seg.Len())
	if _, err := ra.ReadAt(buf, int64(seg.Start)); err != nil {
		return nil, fmt.Errorf("failed to read segment: %w", err)
	}
	return buf, nil
}

// sizedReaderAt is satisfied by bytes.Reader, strings.Reader and
// io.SectionReader.
type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

// randomAccess returns src as an io.ReaderAt with its size, spooling it to a
// temporary file in dir when it offers no random access.
func randomAccess(ctx context.Context, src io.Reader, dir string) (io.ReaderAt, int64, func(), error) {
	noop := func() {}

	switch v := src.(type) {
	case sizedReaderAt:
		return v, v.Size(), noop, nil
	case *os.File:
		info, err := v.Stat()
		if err == nil && info.Mode().IsRegular() {
			return v, info.Size(), noop, nil
		}
	}

	spool, err := os.CreateTemp(dir, "wpgp-spool-*")
	if err != nil {
		return nil, 0, noop, fmt.Errorf("failed to create spool file: %w", err)
	}
	cleanup := func() {
		spool.Close()
		os.Remove(spool.Name())
	}

	n, err := io.Copy(spool, &ctxReader{ctx: ctx, r: src})
	if err != nil {
		cleanup()
		return nil, 0, noop, fmt.Errorf("failed to spool source: %w", err)
	}
	return spool, n, cleanup, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
