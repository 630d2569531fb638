package rest

import (
	"net/http"

	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/di"
	"github.com/alfhazis/infinite-canvas-creator-sub001/interfaces/http/rest/handlers"
	"github.com/alfhazis/infinite-canvas-creator-sub001/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.container.Logger))

	if rt.container.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	projectHandler := handlers.NewProjectHandler(rt.container.ProjectService, rt.container.Logger)
	canvasHandler := handlers.NewCanvasHandler(rt.container.Canvas, rt.container.LayoutService, rt.container.Logger)
	assemblyHandler := handlers.NewAssemblyHandler(
		rt.container.Canvas,
		rt.container.PickOrder,
		rt.container.AssemblyService,
		rt.container.Logger,
	)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(600))
		r.Use(middleware.Authenticate(rt.container.Config.JWTSecret))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Post("/", projectHandler.CreateProject)
			r.Post("/save", projectHandler.SaveProject)
			r.Patch("/{projectID}", projectHandler.UpdateProject)
			r.Delete("/{projectID}", projectHandler.DeleteProject)
			r.Post("/{projectID}/activate", projectHandler.ActivateProject)
		})

		r.Get("/session", projectHandler.Session)

		r.Route("/canvas", func(r chi.Router) {
			r.Get("/", canvasHandler.GetCanvas)
			r.Post("/clear", canvasHandler.ClearCanvas)
			r.Put("/viewport", canvasHandler.UpdateViewport)
			r.Put("/model", canvasHandler.SetModel)

			r.Route("/nodes", func(r chi.Router) {
				r.Post("/", canvasHandler.CreateNode)
				r.Patch("/{nodeID}", canvasHandler.UpdateNode)
				r.Delete("/{nodeID}", canvasHandler.DeleteNode)
				r.Post("/{nodeID}/duplicate", canvasHandler.DuplicateNode)
				r.Post("/{nodeID}/pick", canvasHandler.TogglePick)
				r.Post("/{nodeID}/select", canvasHandler.SelectNode)
				r.Post("/{nodeID}/drag/start", canvasHandler.StartDrag)
				r.Post("/{nodeID}/variations", projectHandler.SaveVariations)
				r.Get("/{nodeID}/variations", projectHandler.ListVariations)
			})

			r.Post("/connections", canvasHandler.Connect)
			r.Delete("/connections", canvasHandler.Disconnect)
			r.Post("/connect/start", canvasHandler.StartConnecting)
			r.Post("/connect/finish", canvasHandler.FinishConnecting)
			r.Post("/connect/cancel", canvasHandler.CancelConnecting)
			r.Post("/drag", canvasHandler.Drag)
			r.Post("/drag/end", canvasHandler.EndDrag)
		})

		r.Route("/assembly", func(r chi.Router) {
			r.Get("/", assemblyHandler.Compose)
			r.Get("/preview", assemblyHandler.Preview)
			r.Get("/order", assemblyHandler.GetOrder)
			r.Post("/order", assemblyHandler.Reorder)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
