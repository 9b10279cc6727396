package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apimw "github.com/prasetyowira/qrstudio/api/middleware"
	"github.com/prasetyowira/qrstudio/constant"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// Router represents the application router
type Router struct {
	handler  *Handler
	router   *chi.Mux
	username string
	password string
}

// NewRouter creates a new router. Job history and cache stats are behind
// basic auth when username is set.
func NewRouter(handler *Handler, username, password string) *Router {
	r := chi.NewRouter()

	// Middleware setup
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimw.RequestLogger())

	return &Router{
		handler:  handler,
		router:   r,
		username: username,
		password: password,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() {
	appLogger.Info(constant.MsgSettingUpRoutes, appLogger.LoggerInfo{
		ContextFunction: constant.CtxRouter,
	})

	// Sessions
	r.router.Post(constant.RouteSessions, r.handler.CreateSession)
	r.router.Get(constant.RouteSession, r.handler.GetSession)
	r.router.Delete(constant.RouteSession, r.handler.CloseSession)
	r.router.Patch(constant.RouteDraft, r.handler.UpdateDraft)
	r.router.Post(constant.RouteApply, r.handler.ApplyDraft)
	r.router.Put(constant.RouteMode, r.handler.SetMode)
	r.router.Put(constant.RouteInput, r.handler.SetInput)
	r.router.Get(constant.RoutePreview, r.handler.GetPreview)
	r.router.Post(constant.RouteDownload, r.handler.Download)
	r.router.Get(constant.RouteNotifications, r.handler.Notifications)

	// Stateless exports
	r.router.Post(constant.RouteQRCodes, r.handler.CreateQRCode)
	r.router.Post(constant.RouteQRCodesZip, r.handler.CreateZip)

	// Job history and cache stats
	r.router.Group(func(admin chi.Router) {
		if r.username != "" {
			creds := map[string]string{
				r.username: r.password,
			}
			admin.Use(middleware.BasicAuth(constant.AuthRealm, creds))
		}
		admin.Get(constant.RouteJobs, r.handler.ListJobs)
		admin.Get(constant.RouteStats, r.handler.GetStats)
	})

	// Healthcheck
	r.router.Get(constant.RouteHealthcheck, func(w http.ResponseWriter, r *http.Request) {
		appLogger.CtxDebug(r.Context(), constant.MsgHealthcheckRequest, appLogger.LoggerInfo{
			ContextFunction: constant.CtxRouter,
		})

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(constant.MsgHealthy))
	})
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
