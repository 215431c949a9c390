package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"searoute/pkg/geo"
	"searoute/pkg/router"
)

// RouteHandler serves route computation requests.
type RouteHandler struct {
	router *router.Router
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(r *router.Router) *RouteHandler {
	return &RouteHandler{router: r}
}

// Coordinate is a lat/lng pair. Pointers distinguish "missing" from zero so
// validation can reject absent fields.
type Coordinate struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// RouteRequest is the API request body.
type RouteRequest struct {
	Origin       Coordinate `json:"origin"`
	Destination  Coordinate `json:"destination"`
	Optimization string     `json:"optimization"`
}

// RoutePoint is one position along the computed route.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteDebug reports search degradation for observability.
type RouteDebug struct {
	LandMaskLoaded bool `json:"landMaskLoaded"`
	WeatherSampled bool `json:"weatherSampled"`
	// Fallback is set when the search exhausted and the direct two-point
	// path was substituted.
	Fallback bool `json:"fallback"`
}

// RouteResponse is the API response body.
type RouteResponse struct {
	DistanceNm         int               `json:"distance_nm"`
	EstimatedTimeHours int               `json:"estimated_time_hours"`
	FuelConsumptionMt  int               `json:"fuel_consumption_mt"`
	RoutePoints        []RoutePoint      `json:"route_points"`
	GeoJSON            *geojson.Geometry `json:"geojson"`
	Debug              RouteDebug        `json:"debug"`
}

func (h *RouteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	origin, err := req.Origin.toPoint()
	if err != "" {
		http.Error(w, "origin: "+err, http.StatusBadRequest)
		return
	}
	dest, err := req.Destination.toPoint()
	if err != "" {
		http.Error(w, "destination: "+err, http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)
	log.Info("Route request",
		"origin_lat", origin.Lat, "origin_lng", origin.Lon,
		"dest_lat", dest.Lat, "dest_lng", dest.Lon,
		"optimization", req.Optimization)

	mode := router.ParseMode(req.Optimization)
	res := h.router.Route(r.Context(), origin, dest, mode)

	points := make([]RoutePoint, 0, len(res.Points))
	for _, p := range res.Points {
		points = append(points, RoutePoint{Lat: p.Lat, Lng: p.Lon})
	}

	resp := RouteResponse{
		DistanceNm:         int(math.Round(res.DistanceNm)),
		EstimatedTimeHours: int(math.Round(res.TimeHours)),
		FuelConsumptionMt:  int(math.Round(res.FuelMt)),
		RoutePoints:        points,
		GeoJSON:            geojson.NewGeometry(res.Line),
		Debug: RouteDebug{
			LandMaskLoaded: res.LandMaskLoaded,
			WeatherSampled: res.WeatherSampled,
			Fallback:       res.Fallback,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Error("Failed to encode route response", "error", encErr)
	}
}

// toPoint validates the coordinate and returns it as a geo.Point. The second
// return is a client-facing error message, empty when valid.
func (c Coordinate) toPoint() (geo.Point, string) {
	if c.Lat == nil || c.Lng == nil {
		return geo.Point{}, "lat and lng are required"
	}
	lat, lng := *c.Lat, *c.Lng
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return geo.Point{}, "lat and lng must be finite numbers"
	}
	if lat < -90 || lat > 90 {
		return geo.Point{}, "lat must be in [-90, 90]"
	}
	if lng < -180 || lng > 180 {
		return geo.Point{}, "lng must be in [-180, 180]"
	}
	return geo.Point{Lat: lat, Lon: lng}, ""
}
