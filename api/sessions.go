package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/session"
	"github.com/prasetyowira/qrstudio/domain/style"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// ModeRequest is the request object for SetMode
type ModeRequest struct {
	Mode string `json:"mode"`
}

// InputRequest is the request object for SetInput. Nil fields are left
// alone.
type InputRequest struct {
	Single *string `json:"single,omitempty"`
	Multi  *string `json:"multi,omitempty"`
}

// PreviewResponse is the data URI form of a preview
type PreviewResponse struct {
	DataURI     string `json:"data_uri"`
	ContentType string `json:"content_type"`
}

// PreviewGridResponse is the multi-mode preview, one cell per input
type PreviewGridResponse struct {
	Items []export.PreviewItem `json:"items"`
}

// NotificationsResponse is the drained notification feed
type NotificationsResponse struct {
	Notifications []session.Entry `json:"notifications"`
}

// session resolves the {sessionID} URL parameter, writing a 404 when unknown
func (h *Handler) session(w http.ResponseWriter, r *http.Request, fn string) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			appLogger.CtxInfo(r.Context(), "Session not found", appLogger.LoggerInfo{
				ContextFunction: fn,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAPINotFound,
					Message: err.Error(),
					Type:    constant.ErrTypeAPI,
				},
				Data: map[string]interface{}{
					constant.DataSessionID: id,
				},
			})
			WriteJSONError(w, constant.ErrSessionNotFound, http.StatusNotFound)
			return nil, false
		}
		WriteJSONError(w, "Error retrieving session", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

// CreateSession opens a new session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(r.Context())
	WriteJSON(w, s.State(), http.StatusCreated)
}

// GetSession returns the session state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, constant.CtxGetSession)
	if !ok {
		return
	}
	WriteJSON(w, s.State(), http.StatusOK)
}

// CloseSession drops a session
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, constant.CtxCloseSession)
	if !ok {
		return
	}
	h.sessions.Close(r.Context(), s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateDraft stages style edits
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, constant.CtxUpdateDraft)
	if !ok {
		return
	}
	var req style.DraftUpdate
	if !decode(w, r, constant.CtxUpdateDraft, &req) {
		return
	}
	s.Store.UpdateDraft(req)
	WriteJSON(w, s.State(), http.StatusOK)
}

// ApplyDraft commits the staged style
func (h *Handler) ApplyDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r, constant.CtxApplyDraft)
	if !ok {
		return
	}

	cfg := s.Store.Apply(ctx)
	s.Feed.Notify(ctx, export.Notification{
		Title:       constant.NoteChangesAppliedTitle,
		Description: constant.NoteChangesAppliedBody,
		Severity:    export.SeverityDefault,
	})

	appLogger.CtxInfo(ctx, "Style applied", appLogger.LoggerInfo{
		ContextFunction: constant.CtxApplyDraft,
		Data: map[string]interface{}{
			constant.DataSessionID: s.ID,
			constant.DataPixelSize: cfg.PixelSize,
			constant.DataPadding:   cfg.Padding,
			constant.DataFormat:    cfg.Format,
		},
	})

	WriteJSON(w, s.State(), http.StatusOK)
}

// SetMode switches between single and multi input
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, constant.CtxSetMode)
	if !ok {
		return
	}
	var req ModeRequest
	if !decode(w, r, constant.CtxSetMode, &req) {
		return
	}
	mode, valid := style.ParseMode(req.Mode)
	if !valid {
		appLogger.CtxWarn(r.Context(), "Invalid mode", appLogger.LoggerInfo{
			ContextFunction: constant.CtxSetMode,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIValidation,
				Message: constant.ErrInvalidMode,
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataMode: req.Mode,
			},
		})
		WriteJSONError(w, constant.ErrInvalidMode, http.StatusBadRequest)
		return
	}
	s.Store.SetMode(mode)
	WriteJSON(w, s.State(), http.StatusOK)
}

// SetInput replaces the single value and/or the multi-line text
func (h *Handler) SetInput(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, constant.CtxSetInput)
	if !ok {
		return
	}
	var req InputRequest
	if !decode(w, r, constant.CtxSetInput, &req) {
		return
	}
	if req.Single != nil {
		s.Store.SetSingleText(*req.Single)
	}
	if req.Multi != nil {
		s.Store.SetMultiText(*req.Multi)
	}
	WriteJSON(w, s.State(), http.StatusOK)
}

// GetPreview returns the raw glyph of the single value, or the preview grid
// of all inputs in multi mode
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r, constant.CtxGetPreview)
	if !ok {
		return
	}

	snap := s.Store.Snapshot()
	if snap.Mode == style.ModeMulti {
		WriteJSON(w, PreviewGridResponse{Items: h.exporter.PreviewItems(ctx, snap)}, http.StatusOK)
		return
	}

	file, err := h.exporter.Preview(ctx, snap)
	if err != nil {
		appLogger.CtxError(ctx, "Error rendering preview", appLogger.LoggerInfo{
			ContextFunction: constant.CtxGetPreview,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
			Data: map[string]interface{}{
				constant.DataSessionID: s.ID,
			},
		})
		WriteJSONError(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("encoding"), "datauri") {
		WriteJSON(w, PreviewResponse{
			DataURI:     constant.DataURIPrefix + file.ContentType + constant.DataURIBase64 + base64.StdEncoding.EncodeToString(file.Data),
			ContentType: file.ContentType,
		}, http.StatusOK)
		return
	}

	w.Header().Set(constant.HeaderContentType, file.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// Download exports the session: one image in single mode, a zip in multi
// mode
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r, constant.CtxDownload)
	if !ok {
		return
	}

	snap := s.Store.Snapshot()
	appLogger.CtxDebug(ctx, "Handling download", appLogger.LoggerInfo{
		ContextFunction: constant.CtxDownload,
		Data: map[string]interface{}{
			constant.DataSessionID: s.ID,
			constant.DataMode:      snap.Mode,
		},
	})

	var (
		file *export.File
		res  export.Result
		err  error
	)
	if snap.Mode == style.ModeMulti {
		file, res, err = h.exporter.ExportBulk(ctx, snap, s.Feed, s.Guard)
	} else {
		file, res, err = h.exporter.ExportSingle(ctx, snap, s.Feed)
	}
	if err != nil {
		h.writeExportError(ctx, w, constant.CtxDownload, err)
		return
	}

	writeFile(w, file, res)
}

// Notifications drains the session's notification feed
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, constant.CtxNotifications)
	if !ok {
		return
	}
	WriteJSON(w, NotificationsResponse{Notifications: s.Feed.Drain()}, http.StatusOK)
}
