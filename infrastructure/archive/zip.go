package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// ErrSerialized is returned when an archive is used after Serialize
var ErrSerialized = errors.New(constant.ErrArchiveSerialized)

// Archiver creates in-memory zip archives
type Archiver struct {
	Method uint16
	now    func() time.Time
}

// NewArchiver creates an archiver that deflates entries
func NewArchiver() *Archiver {
	return &Archiver{Method: zip.Deflate, now: time.Now}
}

// NewArchive starts an empty archive
func (a *Archiver) NewArchive() (export.Archive, error) {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	buf := &bytes.Buffer{}
	return &Zip{
		buf:      buf,
		w:        zip.NewWriter(buf),
		method:   a.Method,
		modified: now(),
	}, nil
}

// Zip is one archive being built. Entries keep insertion order.
type Zip struct {
	mu       sync.Mutex
	buf      *bytes.Buffer
	w        *zip.Writer
	method   uint16
	modified time.Time
	entries  int
	done     bool
}

// AddEntry writes data under name
func (z *Zip) AddEntry(name string, data []byte) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.done {
		return ErrSerialized
	}
	f, err := z.w.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   z.method,
		Modified: z.modified,
	})
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	z.entries++
	return nil
}

// Serialize finishes the archive and returns its bytes. An archive can be
// serialized once.
func (z *Zip) Serialize(ctx context.Context) ([]byte, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.done {
		return nil, ErrSerialized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	z.done = true
	if err := z.w.Close(); err != nil {
		logger.CtxError(ctx, "Failed to finalize archive", logger.LoggerInfo{
			ContextFunction: constant.CtxArchive,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeArchiveSerialize,
				Message: err.Error(),
				Type:    constant.ErrTypeArchive,
			},
		})
		return nil, err
	}

	logger.CtxDebug(ctx, "Archive serialized", logger.LoggerInfo{
		ContextFunction: constant.CtxArchive,
		Data: map[string]interface{}{
			constant.DataEntries: z.entries,
			constant.DataSize:    z.buf.Len(),
		},
	})
	return z.buf.Bytes(), nil
}
