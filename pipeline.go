package zstream

import (
	"context"
	"io"
	"io/fs"

	"go.uber.org/zap"
)

// FileSystem is the filesystem surface the file pipeline needs. It is
// deliberately narrow so any storage backend can drive a pipeline; see
// NewOSFS for the operating-system implementation and NewMemFS for the
// in-memory one.
type FileSystem interface {
	Open(name string) (File, error)
	Create(name string) (File, error)
	Stat(name string) (fs.FileInfo, error)
}

// File is the per-file surface the pipeline needs.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Sync() error
}

// ProgressFunc receives cumulative progress after each chunk. total is the
// source size, or zero when it is unknown. Events arrive in monotonically
// non-decreasing processed order.
type ProgressFunc func(processed, total uint64)

// PipelineOptions configures a file pipeline.
type PipelineOptions struct {
	// Format is the container format. AutoDetect is valid for
	// decompression only. Default: gzip.
	Format WindowFormat

	// Params tunes the underlying session (level, scratch size,
	// dictionary, ...).
	Params *Params

	// Header is optional gzip metadata attached when compressing.
	Header *Header

	// ChunkSize is the fixed read size, default 64 KiB. Peak memory is
	// bounded by ChunkSize plus the session scratch regardless of file
	// size.
	ChunkSize int

	// OnProgress, if set, is invoked once per chunk boundary.
	OnProgress ProgressFunc

	// Logger receives debug events. Nil selects a no-op logger.
	Logger *zap.Logger
}

// DefaultPipelineOptions returns options with all defaults resolved.
func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		Format:    Gzip(),
		Params:    DefaultParams(),
		ChunkSize: defaultChunkSize,
	}
}

// Pipeline drives the chunked transform loop from file input to file
// output with bounded memory, optional progress events and cooperative
// cancellation. Cancellation is checked once per chunk boundary, never
// mid-chunk; a cancelled run leaves the partially written destination in
// place, and cleanup is the caller's business.
type Pipeline struct {
	fs     FileSystem
	opts   PipelineOptions
	logger *zap.Logger
}

// NewPipeline builds a pipeline over the given filesystem. A nil opts
// selects defaults.
func NewPipeline(fsys FileSystem, opts *PipelineOptions) *Pipeline {
	if opts == nil {
		opts = DefaultPipelineOptions()
	}
	p := &Pipeline{fs: fsys, opts: *opts}
	if p.opts.ChunkSize <= 0 {
		p.opts.ChunkSize = defaultChunkSize
	}
	if p.opts.Params == nil {
		p.opts.Params = DefaultParams()
	}
	p.logger = p.opts.Logger
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// CompressFile compresses src into dst.
func (p *Pipeline) CompressFile(ctx context.Context, src, dst string) error {
	return p.run(ctx, ModeCompress, src, dst)
}

// DecompressFile decompresses src into dst.
func (p *Pipeline) DecompressFile(ctx context.Context, src, dst string) error {
	return p.run(ctx, ModeDecompress, src, dst)
}

func (p *Pipeline) run(ctx context.Context, mode Mode, src, dst string) error {
	var total uint64
	if info, err := p.fs.Stat(src); err == nil {
		total = uint64(info.Size())
	}

	in, err := p.fs.Open(src)
	if err != nil {
		return &PipelineError{Op: "open", Path: src, Chunk: -1, Err: err}
	}
	defer in.Close()

	out, err := p.fs.Create(dst)
	if err != nil {
		return &PipelineError{Op: "create", Path: dst, Chunk: -1, Err: err}
	}
	defer out.Close()

	params := *p.opts.Params
	if params.Logger == nil {
		params.Logger = p.logger
	}
	sess := NewSession(mode)
	if err := sess.Init(p.opts.Format, &params); err != nil {
		return err
	}
	defer sess.Close()

	if p.opts.Header != nil && mode == ModeCompress {
		if err := sess.AttachHeader(p.opts.Header); err != nil {
			return err
		}
	}

	buf := make([]byte, p.opts.ChunkSize)
	var processed uint64
	chunk := 0
	for {
		if ctx.Err() != nil {
			p.logger.Debug("pipeline cancelled",
				zap.String("src", src),
				zap.Int("chunk", chunk),
				zap.Uint64("processed", processed))
			return ErrCancelled
		}

		n, rerr := in.Read(buf)
		if n > 0 {
			produced, perr := sess.Process(buf[:n], NoFlush)
			if perr != nil {
				return perr
			}
			if len(produced) > 0 {
				if _, werr := out.Write(produced); werr != nil {
					return &PipelineError{Op: "write", Path: dst, Chunk: chunk, Err: werr}
				}
			}
			processed += uint64(n)
			if p.opts.OnProgress != nil {
				p.opts.OnProgress(processed, total)
			}
			chunk++
		}
		if rerr == io.EOF || sess.State() == StateFinished {
			break
		}
		if rerr != nil {
			return &PipelineError{Op: "read", Path: src, Chunk: chunk, Err: rerr}
		}
	}

	tail, err := sess.Finish()
	if err != nil {
		return err
	}
	if len(tail) > 0 {
		if _, werr := out.Write(tail); werr != nil {
			return &PipelineError{Op: "write", Path: dst, Chunk: chunk, Err: werr}
		}
	}
	if err := out.Sync(); err != nil {
		return &PipelineError{Op: "sync", Path: dst, Chunk: -1, Err: err}
	}

	p.logger.Debug("pipeline done",
		zap.Stringer("mode", mode),
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Uint64("in", sess.TotalIn()),
		zap.Uint64("out", sess.TotalOut()))
	return nil
}

// CompressFile compresses a file on the operating-system filesystem.
func CompressFile(ctx context.Context, src, dst string, opts *PipelineOptions) error {
	return NewPipeline(NewOSFS(), opts).CompressFile(ctx, src, dst)
}

// DecompressFile decompresses a file on the operating-system filesystem.
func DecompressFile(ctx context.Context, src, dst string, opts *PipelineOptions) error {
	return NewPipeline(NewOSFS(), opts).DecompressFile(ctx, src, dst)
}
