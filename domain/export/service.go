package export

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// Dependencies wires the collaborators of a Service. Recorder and Cache are
// optional.
type Dependencies struct {
	Renderer   Renderer
	Rasterizer Rasterizer
	Compositor Compositor
	Archiver   Archiver
	Recorder   Recorder
	Cache      GlyphCache
}

// Service runs preview, single and bulk exports
type Service struct {
	renderer   Renderer
	rasterizer Rasterizer
	compositor Compositor
	archiver   Archiver
	recorder   Recorder
	cache      GlyphCache
}

// NewService creates a new export service
func NewService(deps Dependencies) *Service {
	logger.Debug("Creating export service", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService: "export",
		},
	})

	return &Service{
		renderer:   deps.Renderer,
		rasterizer: deps.Rasterizer,
		compositor: deps.Compositor,
		archiver:   deps.Archiver,
		recorder:   deps.Recorder,
		cache:      deps.Cache,
	}
}

func renderRequest(value string, cfg style.Config, kind GlyphKind) RenderRequest {
	return RenderRequest{
		Value:      value,
		Size:       cfg.PixelSize,
		Foreground: cfg.Foreground,
		Background: Transparent,
		Level:      cfg.Level,
		Kind:       kind,
	}
}

func glyphKey(req RenderRequest) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s|%s", req.Kind, req.Level, req.Size, req.Foreground, req.Background, req.Value)
}

// glyph returns a cached glyph for req, rendering and caching it on a miss
func (s *Service) glyph(ctx context.Context, req RenderRequest) (*Glyph, error) {
	key := glyphKey(req)
	if s.cache != nil {
		if v, found := s.cache.Get(constant.GlyphNamespace, key); found {
			if g, ok := v.(*Glyph); ok && g.Usable() {
				logger.CtxDebug(ctx, "Glyph served from cache", logger.LoggerInfo{
					ContextFunction: constant.CtxGlyphCache,
					Data: map[string]interface{}{
						constant.DataKind:     req.Kind.String(),
						constant.DataCacheHit: true,
					},
				})
				return g, nil
			}
		}
	}

	g, err := s.renderer.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	if !g.Usable() {
		return nil, ErrEmptyGlyph
	}
	if s.cache != nil {
		s.cache.Set(constant.GlyphNamespace, key, g)
	}
	return g, nil
}

// Preview returns the raw glyph of the single value: svg markup when the
// format is svg, png otherwise. No padding or background is applied.
func (s *Service) Preview(ctx context.Context, snap style.Snapshot) (*File, error) {
	cfg := snap.Config.Normalize()
	kind := KindFor(cfg.Format)

	g, err := s.glyph(ctx, renderRequest(snap.Single, cfg, kind))
	if err != nil {
		logger.CtxError(ctx, "Failed to render preview", logger.LoggerInfo{
			ContextFunction: constant.CtxPreview,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRender,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
		})
		return nil, err
	}

	if g.Kind == KindVector {
		return &File{
			Name:        constant.SingleFileBase + "." + style.FormatSVG.Extension(),
			ContentType: style.FormatSVG.ContentType(),
			Data:        g.SVG,
		}, nil
	}

	var buf bytes.Buffer
	if err := s.compositor.Encode(&buf, g.Image, style.FormatPNG); err != nil {
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	return &File{
		Name:        constant.SingleFileBase + "." + style.FormatPNG.Extension(),
		ContentType: style.FormatPNG.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

// PreviewItems renders the multi-mode preview grid: one vector glyph of
// PreviewItemSize pixels per input, in input order. A value that fails to
// render keeps its cell with the error set.
func (s *Service) PreviewItems(ctx context.Context, snap style.Snapshot) []PreviewItem {
	cfg := snap.Config.Normalize()
	cfg.PixelSize = PreviewItemSize
	cfg.Level = PreviewItemLevel

	values := snap.Values()
	items := make([]PreviewItem, 0, len(values))
	for i, value := range values {
		item := PreviewItem{Index: i + 1, Value: value}
		g, err := s.glyph(ctx, renderRequest(value, cfg, KindVector))
		if err != nil {
			logger.CtxWarn(ctx, "Failed to render preview item", logger.LoggerInfo{
				ContextFunction: constant.CtxPreview,
				Error: &logger.CustomError{
					Code:    constant.ErrCodeRender,
					Message: err.Error(),
					Type:    constant.ErrTypeRender,
				},
				Data: map[string]interface{}{
					constant.DataIndex: item.Index,
				},
			})
			item.Error = err.Error()
		} else {
			item.DataURI = g.DataURI()
		}
		items = append(items, item)
	}
	return items
}

// singleGlyphImage resolves the glyph pixels for a single export. Vector
// glyphs go through their data URI; when that yields nothing usable the
// renderer is invoked directly for a raster glyph.
func (s *Service) singleGlyphImage(ctx context.Context, value string, cfg style.Config) (image.Image, error) {
	g, err := s.glyph(ctx, renderRequest(value, cfg, KindFor(cfg.Format)))
	if err == nil {
		if g.Kind == KindRaster {
			return g.Image, nil
		}
		img, rerr := s.rasterizer.Rasterize(ctx, g.DataURI(), cfg.PixelSize)
		if rerr == nil && img != nil {
			return img, nil
		}
		err = rerr
	}

	logger.CtxWarn(ctx, "Glyph unusable, rendering off-screen", logger.LoggerInfo{
		ContextFunction: constant.CtxExportSingle,
		Error: &logger.CustomError{
			Code:    constant.ErrCodeGlyphUnusable,
			Message: fmt.Sprint(err),
			Type:    constant.ErrTypeRender,
		},
	})

	g, err = s.renderer.Render(ctx, renderRequest(value, cfg, KindRaster))
	if err != nil {
		return nil, err
	}
	if !g.Usable() {
		return nil, ErrEmptyGlyph
	}
	return g.Image, nil
}

// item renders, composites and encodes one value
func (s *Service) item(ctx context.Context, glyph image.Image, cfg style.Config) ([]byte, error) {
	surface, err := s.compositor.Composite(glyph, cfg)
	if err != nil {
		return nil, fmt.Errorf("compositing: %w", err)
	}
	var buf bytes.Buffer
	if err := s.compositor.Encode(&buf, surface, cfg.Format.Raster()); err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportSingle produces the padded download of the snapshot's single value.
// The composite always rasterizes: an svg request yields a png file.
func (s *Service) ExportSingle(ctx context.Context, snap style.Snapshot, n Notifier) (*File, Result, error) {
	n = orNop(n)
	cfg := snap.Config.Normalize()
	j := newJob(style.ModeSingle, cfg.Format, 1)
	j.advance(ctx, StateValidating)
	j.advance(ctx, StateRunning)

	logger.CtxDebug(ctx, "Exporting single QR code", logger.LoggerInfo{
		ContextFunction: constant.CtxExportSingle,
		Data: map[string]interface{}{
			constant.DataJobID:     j.result.JobID,
			constant.DataFormat:    cfg.Format,
			constant.DataPixelSize: cfg.PixelSize,
			constant.DataPadding:   cfg.Padding,
		},
	})

	fail := func(code string, err error) (*File, Result, error) {
		logger.CtxError(ctx, "Single export failed", logger.LoggerInfo{
			ContextFunction: constant.CtxExportSingle,
			Error: &logger.CustomError{
				Code:    code,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataJobID: j.result.JobID,
			},
		})
		n.Notify(ctx, Notification{
			Title:       constant.NoteRenderFailedTitle,
			Description: constant.NoteRenderFailedBody,
			Severity:    SeverityDestructive,
		})
		j.result.Skipped = 1
		j.advance(ctx, StateFailed)
		res := j.finish(ctx, err)
		s.record(ctx, res)
		return nil, res, err
	}

	glyph, err := s.singleGlyphImage(ctx, snap.Single, cfg)
	if err != nil {
		return fail(constant.ErrCodeRender, err)
	}

	data, err := s.item(ctx, glyph, cfg)
	if err != nil {
		return fail(constant.ErrCodeEncode, err)
	}

	j.advance(ctx, StateFinalizing)
	j.advance(ctx, StateSucceeded)
	j.result.Succeeded = 1
	res := j.finish(ctx, nil)
	s.record(ctx, res)

	name := SingleFileName(cfg.Format)
	logger.CtxInfo(ctx, "Single QR code exported", logger.LoggerInfo{
		ContextFunction: constant.CtxExportSingle,
		Data: map[string]interface{}{
			constant.DataJobID:    res.JobID,
			constant.DataFilename: name,
			constant.DataSize:     len(data),
		},
	})

	return &File{
		Name:        name,
		ContentType: cfg.Format.Raster().ContentType(),
		Data:        data,
	}, res, nil
}

// ExportBulk packages one image per input of the snapshot into a zip
// archive. Items are processed strictly in order; a failing item is skipped
// and reported in the result. guard is the busy flag of the calling view:
// while a job holds it, further calls return ErrJobInFlight without doing
// any work. A nil guard disables the check.
func (s *Service) ExportBulk(ctx context.Context, snap style.Snapshot, n Notifier, guard *Guard) (*File, Result, error) {
	if guard == nil {
		guard = &Guard{}
	}
	cfg := snap.Config.Normalize()
	if !guard.TryAcquire() {
		logger.CtxWarn(ctx, "Bulk export already running", logger.LoggerInfo{
			ContextFunction: constant.CtxExportBulk,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeJobInFlight,
				Message: constant.ErrJobInFlight,
				Type:    constant.ErrTypeValidation,
			},
		})
		return nil, Result{Mode: style.ModeMulti, Format: cfg.Format, State: StateIdle, Error: constant.ErrJobInFlight}, ErrJobInFlight
	}
	defer guard.Release()

	n = orNop(n)
	values := snap.Inputs
	j := newJob(style.ModeMulti, cfg.Format, len(values))
	j.advance(ctx, StateValidating)

	if len(values) == 0 {
		logger.CtxWarn(ctx, "No inputs to export", logger.LoggerInfo{
			ContextFunction: constant.CtxExportBulk,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeNoInputs,
				Message: constant.ErrNoInputs,
				Type:    constant.ErrTypeValidation,
			},
		})
		n.Notify(ctx, Notification{
			Title:       constant.NoteNoCodesTitle,
			Description: constant.NoteNoCodesBody,
			Severity:    SeverityDestructive,
		})
		j.advance(ctx, StateEmpty)
		res := j.finish(ctx, ErrNoInputs)
		s.record(ctx, res)
		return nil, res, ErrNoInputs
	}

	n.Notify(ctx, Notification{
		Title:       constant.NoteZippingTitle,
		Description: fmt.Sprintf(constant.NoteZippingBody, len(values)),
		Severity:    SeverityDefault,
	})
	j.advance(ctx, StateRunning)

	archive, err := s.archiver.NewArchive()
	if err != nil {
		return s.failBulk(ctx, n, j, constant.ErrCodeArchiveEntry, fmt.Errorf("creating archive: %w", err))
	}

	for i, value := range values {
		index := i + 1
		data, err := s.bulkItem(ctx, value, cfg)
		if err == nil {
			err = archive.AddEntry(EntryName(index, value, cfg.Format), data)
		}
		if err != nil {
			logger.CtxWarn(ctx, "Skipping bulk item", logger.LoggerInfo{
				ContextFunction: constant.CtxExportBulk,
				Error: &logger.CustomError{
					Code:    constant.ErrCodeItemSkipped,
					Message: err.Error(),
					Type:    constant.ErrTypeRender,
				},
				Data: map[string]interface{}{
					constant.DataJobID: j.result.JobID,
					constant.DataIndex: index,
					constant.DataValue: value,
				},
			})
			j.skip(index, value, err)
			continue
		}
		j.result.Succeeded++
	}

	j.advance(ctx, StateFinalizing)
	blob, err := archive.Serialize(ctx)
	if err != nil {
		return s.failBulk(ctx, n, j, constant.ErrCodeArchiveSerialize, fmt.Errorf("serializing archive: %w", err))
	}

	j.advance(ctx, StateSucceeded)
	res := j.finish(ctx, nil)
	s.record(ctx, res)
	n.Notify(ctx, Notification{
		Title:       constant.NoteZipDoneTitle,
		Description: constant.NoteZipDoneBody,
		Severity:    SeverityDefault,
	})

	logger.CtxInfo(ctx, "Bulk export completed", logger.LoggerInfo{
		ContextFunction: constant.CtxExportBulk,
		Data: map[string]interface{}{
			constant.DataJobID:     res.JobID,
			constant.DataCount:     res.Requested,
			constant.DataSucceeded: res.Succeeded,
			constant.DataSkipped:   res.Skipped,
			constant.DataSize:      len(blob),
		},
	})

	return &File{
		Name:        constant.BulkFileName,
		ContentType: constant.ContentTypeZip,
		Data:        blob,
	}, res, nil
}

// bulkItem renders one value off-screen on a transparent background and
// composites it. A panicking collaborator only costs this item.
func (s *Service) bulkItem(ctx context.Context, value string, cfg style.Config) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering %q: %v", value, r)
		}
	}()

	g, err := s.renderer.Render(ctx, renderRequest(value, cfg, KindRaster))
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}
	if !g.Usable() {
		return nil, ErrEmptyGlyph
	}
	return s.item(ctx, g.Image, cfg)
}

func (s *Service) failBulk(ctx context.Context, n Notifier, j *job, code string, err error) (*File, Result, error) {
	logger.CtxError(ctx, "Bulk export failed", logger.LoggerInfo{
		ContextFunction: constant.CtxExportBulk,
		Error: &logger.CustomError{
			Code:    code,
			Message: err.Error(),
			Type:    constant.ErrTypeArchive,
		},
		Data: map[string]interface{}{
			constant.DataJobID: j.result.JobID,
		},
	})
	n.Notify(ctx, Notification{
		Title:       constant.NoteZipFailedTitle,
		Description: constant.NoteZipFailedBody,
		Severity:    SeverityDestructive,
	})
	j.advance(ctx, StateFailed)
	res := j.finish(ctx, err)
	s.record(ctx, res)
	return nil, res, err
}

func (s *Service) record(ctx context.Context, res Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, res); err != nil {
		logger.CtxWarn(ctx, "Failed to record export job", logger.LoggerInfo{
			ContextFunction: constant.CtxDomain,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRecordJob,
				Message: err.Error(),
				Type:    constant.ErrTypeStorage,
			},
			Data: map[string]interface{}{
				constant.DataJobID: res.JobID,
			},
		})
	}
}

func orNop(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(context.Context, Notification) {})
	}
	return n
}
