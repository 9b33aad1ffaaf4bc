package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dtnitsch/kurvalgom/internal/finder"
	"github.com/dtnitsch/kurvalgom/models"
)

//go:embed static/index.html
var static embed.FS

// Finder runs the restaurant search loop.
type Finder interface {
	Find(ctx context.Context, q finder.Query) (*models.RestaurantResult, error)
}

// Router serves the UI and the random restaurant endpoint.
type Router struct {
	finder   Finder
	areaSlug string
	logger   *slog.Logger
}

// NewRouter returns a Router. areaSlug is the radius value that selects the
// whole configured area instead of a circle, e.g. "vilnius".
func NewRouter(f Finder, areaSlug string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{finder: f, areaSlug: strings.ToLower(areaSlug), logger: logger}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", r.index)
	mux.HandleFunc("/random_restaurant", r.randomRestaurant)
	mux.HandleFunc("/healthz", r.health)
}

func (r *Router) index(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) randomRestaurant(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	log := r.logger.With("request_id", uuid.NewString())

	q, err := r.parseQuery(req)
	if err != nil {
		log.Info("rejected restaurant request", "error", err)
		respondError(w, http.StatusBadRequest, err)
		return
	}

	log.Info("searching for restaurant", "lat", q.Lat, "lon", q.Lon, "radius", q.RadiusMeters, "whole_area", q.WholeArea)
	result, err := r.finder.Find(req.Context(), q)
	switch {
	case err == nil:
		log.Info("restaurant found", "restaurant", result.Name, "url", result.URL)
		respondJSON(w, result)
	case errors.Is(err, finder.ErrExhausted):
		log.Error("restaurant search exhausted", "error", err)
		respondError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("restaurant search abandoned", "error", err)
		respondError(w, http.StatusGatewayTimeout, err)
	default:
		log.Error("restaurant search failed", "error", err)
		respondError(w, http.StatusBadRequest, err)
	}
}

func (r *Router) parseQuery(req *http.Request) (finder.Query, error) {
	values := req.URL.Query()
	radius := strings.ToLower(strings.TrimSpace(values.Get("radius")))
	if radius == "" {
		return finder.Query{}, errors.New("radius is required")
	}
	if radius == r.areaSlug {
		return finder.Query{WholeArea: true}, nil
	}

	meters, err := strconv.Atoi(radius)
	if err != nil || meters <= 0 {
		return finder.Query{}, errors.New("radius must be a positive number of meters or " + strconv.Quote(r.areaSlug))
	}
	lat, err := strconv.ParseFloat(values.Get("lat"), 64)
	if err != nil {
		return finder.Query{}, errors.New("lat must be a decimal number")
	}
	lon, err := strconv.ParseFloat(values.Get("lon"), 64)
	if err != nil {
		return finder.Query{}, errors.New("lon must be a decimal number")
	}

	q := finder.Query{Lat: lat, Lon: lon, RadiusMeters: meters}
	return q, q.Validate()
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
