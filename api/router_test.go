package api

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/zip"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/session"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/archive"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	"github.com/prasetyowira/qrstudio/infrastructure/db"
	"github.com/prasetyowira/qrstudio/infrastructure/qrcode"
	"github.com/prasetyowira/qrstudio/infrastructure/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, username, password string) *Router {
	t.Helper()
	repo, err := db.NewJobRepository(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	glyphs := cache.NewNamespaceLRU(100)
	sessionCache := cache.NewNamespaceLRU(10)
	service := export.NewService(export.Dependencies{
		Renderer:   qrcode.NewGenerator(),
		Rasterizer: raster.NewSVGRasterizer(),
		Compositor: raster.NewCompositor(0),
		Archiver:   archive.NewArchiver(),
		Recorder:   repo,
		Cache:      glyphs,
	})
	sessions := session.NewManager(sessionCache, style.DefaultConfig())
	handler := NewHandler(service, sessions, repo, style.DefaultConfig())
	handler.ReportCache(constant.CacheGlyphs, glyphs)
	handler.ReportCache(constant.CacheSessions, sessionCache)
	router := NewRouter(handler, username, password)
	router.SetupRoutes()
	return router
}

func serve(router *Router, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	// Arrange
	handler := &Handler{}

	// Act
	router := NewRouter(handler, "", "")

	// Assert
	assert.NotNil(t, router)
	assert.Equal(t, handler, router.handler)
	assert.IsType(t, &chi.Mux{}, router.router)
}

func TestRouter_Healthcheck(t *testing.T) {
	router := newTestRouter(t, "", "")

	w := serve(router, http.MethodGet, constant.RouteHealthcheck, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.MsgHealthy, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(constant.HeaderRequestID))
}

func TestRouter_SessionBulkDownload(t *testing.T) {
	// Arrange
	router := newTestRouter(t, "", "")
	w := serve(router, http.MethodPost, constant.RouteSessions, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var state session.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	base := "/api/sessions/" + state.ID

	require.Equal(t, http.StatusOK, serve(router, http.MethodPut, base+"/mode", `{"mode":"multi"}`).Code)

	// Act
	w = serve(router, http.MethodPost, base+"/download", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypeZip, w.Header().Get(constant.HeaderContentType))
	assert.Equal(t, `attachment; filename="qrcodes.zip"`, w.Header().Get(constant.HeaderContentDisposition))
	blob := w.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"qrcode_1_https___google_com.png",
		"qrcode_2_https___facebook_com.png",
		"qrcode_3_https___twitter_com.png",
	}, names)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	img, _, err := image.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, style.DefaultPixelSize+2*style.DefaultPadding, img.Bounds().Dx())

	w = serve(router, http.MethodGet, base+"/notifications", "")
	var notes NotificationsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	require.Len(t, notes.Notifications, 2)
	assert.Equal(t, "Zipping it up!", notes.Notifications[0].Title)
	assert.Equal(t, "Preparing 3 QR codes for download...", notes.Notifications[0].Description)
	assert.Equal(t, "Download complete!", notes.Notifications[1].Title)

	w = serve(router, http.MethodGet, constant.RouteJobs, "")
	var jobs JobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs.Jobs, 1)
	assert.Equal(t, 3, jobs.Jobs[0].Succeeded)
}

func TestRouter_SessionSVGDownloadIsPNG(t *testing.T) {
	// Arrange
	router := newTestRouter(t, "", "")
	w := serve(router, http.MethodPost, constant.RouteSessions, "")
	var state session.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	base := "/api/sessions/" + state.ID
	serve(router, http.MethodPatch, base+"/draft", `{"format":"svg","padding":"40"}`)
	serve(router, http.MethodPost, base+"/apply", "")

	// Act
	preview := serve(router, http.MethodGet, base+"/preview", "")
	download := serve(router, http.MethodPost, base+"/download", "")

	// Assert
	assert.Equal(t, "image/svg+xml", preview.Header().Get(constant.HeaderContentType))
	assert.True(t, strings.HasPrefix(preview.Body.String(), "<svg"))
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "image/png", download.Header().Get(constant.HeaderContentType))
	img, format, err := image.Decode(bytes.NewReader(download.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, style.DefaultPixelSize+80, img.Bounds().Dx())
}

func TestRouter_EmptyBulkInput(t *testing.T) {
	router := newTestRouter(t, "", "")

	w := serve(router, http.MethodPost, constant.RouteQRCodesZip, `{"text":"  \n\n"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouter_JobsBasicAuth(t *testing.T) {
	router := newTestRouter(t, "admin", "secret")

	w := serve(router, http.MethodGet, constant.RouteJobs, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, constant.RouteJobs, nil)
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_StatsReportsCaches(t *testing.T) {
	// Arrange
	router := newTestRouter(t, "admin", "secret")
	w := serve(router, http.MethodPost, constant.RouteSessions, "")
	var state session.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	base := "/api/sessions/" + state.ID
	serve(router, http.MethodGet, base+"/preview", "")
	serve(router, http.MethodGet, base+"/preview", "")

	// Act
	unauthorized := serve(router, http.MethodGet, constant.RouteStats, "")
	req := httptest.NewRequest(http.MethodGet, constant.RouteStats, nil)
	req.SetBasicAuth("admin", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, unauthorized.Code)
	require.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp.Caches, constant.CacheGlyphs)
	require.Contains(t, resp.Caches, constant.CacheSessions)
	assert.Equal(t, 1, resp.Caches[constant.CacheGlyphs].Size)
	assert.Equal(t, uint64(1), resp.Caches[constant.CacheGlyphs].Hits)
	assert.Equal(t, 1, resp.Caches[constant.CacheSessions].Size)
}

func TestRouter_MultiModePreviewGrid(t *testing.T) {
	// Arrange
	router := newTestRouter(t, "", "")
	w := serve(router, http.MethodPost, constant.RouteSessions, "")
	var state session.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	base := "/api/sessions/" + state.ID
	require.Equal(t, http.StatusOK, serve(router, http.MethodPut, base+"/mode", `{"mode":"multi"}`).Code)

	// Act
	w = serve(router, http.MethodGet, base+"/preview", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var grid PreviewGridResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grid))
	require.Len(t, grid.Items, 3)
	assert.Equal(t, "https://twitter.com", grid.Items[2].Value)
	for i, item := range grid.Items {
		assert.Equal(t, i+1, item.Index)
		assert.Empty(t, item.Error)
		assert.True(t, strings.HasPrefix(item.DataURI, "data:image/svg+xml;base64,"))
	}
}

func TestRouter_UnknownSession(t *testing.T) {
	router := newTestRouter(t, "", "")

	w := serve(router, http.MethodPost, "/api/sessions/unknown/download", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
