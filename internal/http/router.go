package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"devsync/internal/http/handlers"
	"devsync/internal/http/metrics"
	httpmw "devsync/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	ProjectHandler     *handlers.ProjectHandler
	ApplicationHandler *handlers.ApplicationHandler
	PostHandler        *handlers.PostHandler
	CommentHandler     *handlers.CommentHandler
	ReportHandler      *handlers.ReportHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	Logger             zerolog.Logger
	RequestTimeout     time.Duration
}

type Router struct {
	deps RouterDependencies
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(),
		httpmw.RequestID,
		httpmw.Logging(r.deps.Logger),
		httpmw.BodyLimit(maxBodyBytes),
		httpmw.Recover(r.deps.Logger),
		httpmw.Metrics(r.deps.Metrics),
		httpmw.Timeout(r.deps.RequestTimeout))
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.Metrics.Handler().ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/register":
			r.deps.AuthHandler.Register(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/login":
			r.deps.AuthHandler.Login(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/refresh":
			r.deps.AuthHandler.Refresh(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/logout":
			r.deps.AuthHandler.Logout(w, req)
			return
		case req.Method == http.MethodGet && strings.HasPrefix(path, "/projects/") && segmentCount(path) == 2 && !strings.HasPrefix(path, "/projects/my-projects"):
			r.deps.ProjectHandler.Get(w, req)
			return
		}

		if strings.HasPrefix(path, "/projects") || strings.HasPrefix(path, "/applications") ||
			strings.HasPrefix(path, "/posts") || strings.HasPrefix(path, "/comments") ||
			strings.HasPrefix(path, "/reports") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(r.handleProtected))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	segments := segmentCount(path)

	switch {
	case req.Method == http.MethodPost && path == "/applications/apply":
		r.deps.ApplicationHandler.Apply(w, req)
		return
	case req.Method == http.MethodGet && path == "/applications/my-applications":
		r.deps.ApplicationHandler.ListMine(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/applications/cancel/"):
		r.deps.ApplicationHandler.Cancel(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/applications/accept/"):
		r.deps.ApplicationHandler.Accept(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/applications/reject/"):
		r.deps.ApplicationHandler.Reject(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/applications/") && segments == 2:
		r.deps.ApplicationHandler.ListByProject(w, req)
		return

	case req.Method == http.MethodPost && path == "/projects":
		r.deps.ProjectHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && path == "/projects":
		r.deps.ProjectHandler.List(w, req)
		return
	case req.Method == http.MethodGet && path == "/projects/my-projects":
		r.deps.ProjectHandler.ListMine(w, req)
		return
	case req.Method == http.MethodPut && strings.HasPrefix(path, "/projects/") && segments == 2:
		r.deps.ProjectHandler.Update(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/projects/") && segments == 2:
		r.deps.ProjectHandler.Delete(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/projects/") && strings.HasSuffix(path, "/slots"):
		r.deps.ProjectHandler.AddSlot(w, req)
		return
	case req.Method == http.MethodPut && strings.HasPrefix(path, "/projects/") && strings.Contains(path, "/slots/"):
		r.deps.ProjectHandler.UpdateSlot(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/projects/") && strings.Contains(path, "/slots/"):
		r.deps.ProjectHandler.RemoveSlot(w, req)
		return

	case req.Method == http.MethodPost && path == "/posts":
		r.deps.PostHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && path == "/posts":
		r.deps.PostHandler.List(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/posts/user/"):
		r.deps.PostHandler.ListByUser(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/posts/") && strings.HasSuffix(path, "/like"):
		r.deps.PostHandler.ToggleLike(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/posts/") && segments == 2:
		r.deps.PostHandler.Get(w, req)
		return
	case req.Method == http.MethodPut && strings.HasPrefix(path, "/posts/") && segments == 2:
		r.deps.PostHandler.Update(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/posts/") && segments == 2:
		r.deps.PostHandler.Delete(w, req)
		return

	case req.Method == http.MethodPost && path == "/comments":
		r.deps.CommentHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/comments/post/"):
		r.deps.CommentHandler.ListByPost(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/comments/") && strings.HasSuffix(path, "/like"):
		r.deps.CommentHandler.ToggleLike(w, req)
		return
	case req.Method == http.MethodPut && strings.HasPrefix(path, "/comments/") && segments == 2:
		r.deps.CommentHandler.Update(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/comments/") && segments == 2:
		r.deps.CommentHandler.Delete(w, req)
		return

	case req.Method == http.MethodPost && path == "/reports":
		r.deps.ReportHandler.Create(w, req)
		return
	case req.Method == http.MethodGet && path == "/reports/my-reports":
		r.deps.ReportHandler.ListMine(w, req)
		return
	case req.Method == http.MethodGet && path == "/reports/admin":
		httpmw.RequireAdmin(http.HandlerFunc(r.deps.ReportHandler.AdminList)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/reports/cancel/"):
		r.deps.ReportHandler.Cancel(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/reports/resolve/"):
		httpmw.RequireAdmin(http.HandlerFunc(r.deps.ReportHandler.Resolve)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/reports/") && segments == 2:
		r.deps.ReportHandler.Get(w, req)
		return
	}

	http.NotFound(w, req)
}

func segmentCount(path string) int {
	return len(strings.Split(strings.Trim(path, "/"), "/"))
}
