package domain

// GeoJSON type names used on the wire.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// Property keys every rendered feature carries.
const (
	PropDatetime  = "DATETIME"
	PropRequestID = "REQUEST_ID"
)

// PointGeometry is a GeoJSON point. Coordinates are [longitude,
// latitude] in the geographic [-180, 180] convention.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Feature is a GeoJSON feature with a point geometry.
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   PointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the envelope forecast responses are rendered
// into.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
