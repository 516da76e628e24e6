package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khazidhea/jua-warnings-api/internal/alert"
	"github.com/khazidhea/jua-warnings-api/internal/domain"
	"github.com/khazidhea/jua-warnings-api/internal/usecase"
)

// maxParametersLen caps the raw parameters query string.
const maxParametersLen = 200

// defaultParameters is served when the query names none.
const defaultParameters = "VAR_2T,TP"

// Handler handles HTTP requests for forecasts and warnings.
type Handler struct {
	holder *usecase.DatasetHolder
	alerts *alert.Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(holder *usecase.DatasetHolder, alerts *alert.Service) *Handler {
	return &Handler{
		holder: holder,
		alerts: alerts,
	}
}

// snapshot resolves the active dataset. It writes a 503 and returns
// false while no dataset is loaded.
func (h *Handler) snapshot(c *gin.Context) (*usecase.Snapshot, bool) {
	snap, err := h.holder.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	return snap, true
}

// GetForecast handles GET /v1/forecast.
func (h *Handler) GetForecast(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	lonStr := c.Query("lon")
	latStr := c.Query("lat")
	if lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon parameter is required"})
		return
	}
	if latStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat parameter is required"})
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}

	req, ok := h.forecastQuery(c, snap)
	if !ok {
		return
	}
	req.Lons = []float64{lon}
	req.Lats = []float64{lat}

	fc, err := snap.Service.ExtractPoints(req)
	if err != nil {
		respondExtractError(c, err)
		return
	}

	c.JSON(http.StatusOK, fc)
}

// featureCollectionRequest is the POST /v1/forecast body: a GeoJSON
// FeatureCollection of Point features.
type featureCollectionRequest struct {
	Type     string `json:"type"`
	Features []struct {
		ID       any `json:"id"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// PostForecast handles POST /v1/forecast.
func (h *Handler) PostForecast(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	var body featureCollectionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid GeoJSON body: %v", err)})
		return
	}
	if body.Type != domain.TypeFeatureCollection {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a FeatureCollection"})
		return
	}
	if len(body.Features) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one feature is required"})
		return
	}

	lons := make([]float64, len(body.Features))
	lats := make([]float64, len(body.Features))
	ids := make([]any, len(body.Features))
	for i, f := range body.Features {
		if f.Geometry.Type != domain.TypePoint {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("feature %d: geometry must be a Point", i)})
			return
		}
		if len(f.Geometry.Coordinates) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("feature %d: coordinates must be [lon, lat]", i)})
			return
		}
		lons[i] = f.Geometry.Coordinates[0]
		lats[i] = f.Geometry.Coordinates[1]
		ids[i] = f.ID
	}

	req, ok := h.forecastQuery(c, snap)
	if !ok {
		return
	}
	req.Lons = lons
	req.Lats = lats
	req.FeatureIDs = ids

	fc, err := snap.Service.ExtractPoints(req)
	if err != nil {
		respondExtractError(c, err)
		return
	}

	c.JSON(http.StatusOK, fc)
}

// forecastQuery parses the query parameters shared by both forecast
// endpoints. It writes the error response itself and returns false on
// bad input.
func (h *Handler) forecastQuery(c *gin.Context, snap *usecase.Snapshot) (usecase.PointsRequest, bool) {
	var req usecase.PointsRequest

	raw := c.DefaultQuery("parameters", defaultParameters)
	if len(raw) > maxParametersLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("parameters exceeds %d characters", maxParametersLen)})
		return req, false
	}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			req.Parameters = append(req.Parameters, name)
		}
	}

	units, err := domain.ParseUnitSystem(c.Query("units"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	req.Units = units

	freq, err := domain.ParseFrequency(c.Query("freq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	req.Freq = freq

	req.From, req.To = snap.From, snap.To
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid from time (expected RFC3339): %v", err)})
			return req, false
		}
		req.From = from.UTC()
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid to time (expected RFC3339): %v", err)})
			return req, false
		}
		req.To = to.UTC()
	}

	return req, true
}

func respondExtractError(c *gin.Context, err error) {
	var unsupported *domain.UnsupportedParamsError
	if errors.As(err, &unsupported) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": unsupported.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// GetParameters handles GET /v1/forecast/parameters.
func (h *Handler) GetParameters(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	units, err := domain.ParseUnitSystem(c.Query("units"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parameters": snap.Service.Parameters(units),
	})
}

// createWarningRequest is the POST /v1/warnings body.
type createWarningRequest struct {
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	Parameter   string  `json:"parameter"`
	Condition   string  `json:"condition"`
	Threshold   float64 `json:"threshold"`
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	WarningAt   string  `json:"warning_at"`
}

// warningResponse is the JSON shape of a stored rule.
type warningResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location,omitempty"`
	Email       string   `json:"email,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Parameter   string   `json:"parameter"`
	Condition   string   `json:"condition"`
	Threshold   float64  `json:"threshold"`
	Lon         float64  `json:"lon"`
	Lat         float64  `json:"lat"`
	WarningAt   string   `json:"warning_at"`
	Triggered   *bool    `json:"triggered,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	CheckedAt   *string  `json:"checked_at,omitempty"`
}

func toWarningResponse(r alert.Rule) warningResponse {
	resp := warningResponse{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Parameter:   r.Parameter,
		Condition:   string(r.Condition),
		Threshold:   r.Threshold,
		Lon:         r.Lon,
		Lat:         r.Lat,
		WarningAt:   r.WarningAt.UTC().Format(time.RFC3339),
		Triggered:   r.Triggered,
		Value:       r.Value,
	}
	if r.CheckedAt != nil {
		checked := r.CheckedAt.UTC().Format(time.RFC3339)
		resp.CheckedAt = &checked
	}
	return resp
}

// userID reads the X-User-Id header set by the API gateway. It writes
// a 400 and returns false when the header is missing.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-Id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-Id header is required"})
		return "", false
	}
	return id, true
}

// CreateWarning handles POST /v1/warnings.
func (h *Handler) CreateWarning(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var body createWarningRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid body: %v", err)})
		return
	}

	warningAt, err := time.Parse(time.RFC3339, body.WarningAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid warning_at (expected RFC3339): %v", err)})
		return
	}

	rule, err := h.alerts.Create(c.Request.Context(), alert.Rule{
		UserID:      user,
		Name:        body.Name,
		Location:    body.Location,
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
		Parameter:   body.Parameter,
		Condition:   alert.Condition(body.Condition),
		Threshold:   body.Threshold,
		Lon:         body.Lon,
		Lat:         body.Lat,
		WarningAt:   warningAt,
	})
	if err != nil {
		respondWarningError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWarningResponse(rule))
}

// ListWarnings handles GET /v1/warnings.
func (h *Handler) ListWarnings(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	rules, err := h.alerts.List(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	warnings := make([]warningResponse, len(rules))
	for i, r := range rules {
		warnings[i] = toWarningResponse(r)
	}

	c.JSON(http.StatusOK, gin.H{
		"warnings": warnings,
		"count":    len(warnings),
	})
}

// DeleteWarning handles DELETE /v1/warnings/:id.
func (h *Handler) DeleteWarning(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	if err := h.alerts.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		if errors.Is(err, alert.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckWarnings handles GET /v1/warnings/check: an on-demand sweep.
func (h *Handler) CheckWarnings(c *gin.Context) {
	if err := h.alerts.Sweep(c.Request.Context(), time.Now()); err != nil {
		if errors.Is(err, usecase.ErrNoDataset) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func respondWarningError(c *gin.Context, err error) {
	var unsupported *domain.UnsupportedParamsError
	switch {
	case errors.As(err, &unsupported):
		c.JSON(http.StatusBadRequest, gin.H{"detail": unsupported.Error()})
	case errors.Is(err, usecase.ErrNoDataset):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if snap, err := h.holder.Current(); err == nil {
		resp["dataset"] = snap.Name
	}
	c.JSON(http.StatusOK, resp)
}
