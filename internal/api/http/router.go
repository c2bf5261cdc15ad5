package http

import (
	"net/http"

	"rental-gateway/internal/logger"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterOptions configures the middleware around the gateway routes.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter registers the gateway routes and wraps them with panic recovery,
// CORS and request tracing.
func NewRouter(h *GatewayHandler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/manage/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/cars", h.ListCars).Methods(http.MethodGet)

	rentals := api.PathPrefix("/rental").Subrouter()
	rentals.Use(RequireUserName)
	rentals.HandleFunc("", h.ListRentals).Methods(http.MethodGet)
	rentals.HandleFunc("", h.Reserve).Methods(http.MethodPost)
	rentals.HandleFunc("/{rentalUid}", h.GetRental).Methods(http.MethodGet)
	rentals.HandleFunc("/{rentalUid}", h.Cancel).Methods(http.MethodDelete)
	rentals.HandleFunc("/{rentalUid}/finish", h.Finish).Methods(http.MethodPost)

	r.Use(otelhttp.NewMiddleware("rental-gateway",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					return r.Method + " " + tmpl
				}
			}
			return r.Method + " " + r.URL.Path
		}),
	))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", UserNameHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(cors(r))
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	logger.Error("Recovered from panic in HTTP handler", "panic", v)
}
