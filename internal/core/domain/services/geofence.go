package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/pkg/errs"
)

// DefaultGeocodeTimeout bounds the remote boundary check. The resolver never
// blocks longer than this; on expiry it falls back to the local result.
const DefaultGeocodeTimeout = 2 * time.Second

// Decision sources, recorded so callers can tell an authoritative answer from
// a local fallback.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// GeocodeResult is what the remote geocoding collaborator returns for a coordinate.
type GeocodeResult struct {
	Address    string
	WithinZone bool
}

// Geocoder is the authoritative remote boundary check.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (GeocodeResult, error)
}

// BoundingBox is the configured serviceable rectangle. Bounds are inclusive:
// a coordinate exactly on an edge counts as inside.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// NewBoundingBox validates the rectangle's corners.
func NewBoundingBox(minLat, maxLat, minLng, maxLng float64) (BoundingBox, error) {
	if err := errors.Join(
		validateRange("minLatitude", minLat, -90, 90),
		validateRange("maxLatitude", maxLat, -90, 90),
		validateRange("minLongitude", minLng, -180, 180),
		validateRange("maxLongitude", maxLng, -180, 180),
	); err != nil {
		return BoundingBox{}, err
	}

	if minLat > maxLat {
		return BoundingBox{}, errs.NewValueIsOutOfRangeError("minLatitude", minLat, -90, maxLat)
	}
	if minLng > maxLng {
		return BoundingBox{}, errs.NewValueIsOutOfRangeError("minLongitude", minLng, -180, maxLng)
	}

	return BoundingBox{
		MinLatitude:  minLat,
		MaxLatitude:  maxLat,
		MinLongitude: minLng,
		MaxLongitude: maxLng,
	}, nil
}

func validateRange(name string, v, minValue, maxValue float64) error {
	if v < minValue || v > maxValue {
		return errs.NewValueIsOutOfRangeError(name, v, minValue, maxValue)
	}
	return nil
}

// Contains reports whether the coordinate lies inside the rectangle,
// edges included.
func (b BoundingBox) Contains(latitude, longitude float64) bool {
	return latitude >= b.MinLatitude && latitude <= b.MaxLatitude &&
		longitude >= b.MinLongitude && longitude <= b.MaxLongitude
}

// ZoneDecision is the outcome of a geofence resolution.
type ZoneDecision struct {
	WithinZone bool
	// Source is SourceRemote when the authoritative check answered,
	// SourceLocal when the bounding box decided (including remote fallback).
	Source string
}

// GeofenceResolver decides whether a coordinate is serviceable. It is a
// tiered-fallback chain: the local bounding-box test answers immediately and
// the remote geocoder, when reachable within its timeout budget, supersedes
// it. Remote failure degrades to the local answer — availability over
// precision — because this check is re-run server-side before it gates any
// money-relevant behavior.
type GeofenceResolver struct {
	box      BoundingBox
	geocoder Geocoder
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGeofenceResolver creates a resolver. The geocoder may be nil, in which
// case only the local test runs. A non-positive timeout falls back to
// DefaultGeocodeTimeout.
func NewGeofenceResolver(box BoundingBox, geocoder Geocoder, timeout time.Duration, logger *slog.Logger) *GeofenceResolver {
	if timeout <= 0 {
		timeout = DefaultGeocodeTimeout
	}

	return &GeofenceResolver{
		box:      box,
		geocoder: geocoder,
		timeout:  timeout,
		logger:   logger.With("component", "geofence_resolver"),
	}
}

// ResolveLocal runs only the non-blocking bounding-box test.
func (r *GeofenceResolver) ResolveLocal(latitude, longitude float64) ZoneDecision {
	return ZoneDecision{
		WithinZone: r.box.Contains(latitude, longitude),
		Source:     SourceLocal,
	}
}

// Resolve runs the full chain. It is a pure function of the coordinate and
// collaborator state, never returns an error, and never blocks beyond the
// configured timeout.
func (r *GeofenceResolver) Resolve(ctx context.Context, latitude, longitude float64) ZoneDecision {
	local := r.ResolveLocal(latitude, longitude)
	if r.geocoder == nil {
		return local
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.geocoder.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		r.logger.WarnContext(ctx, "remote boundary check unavailable, using local result",
			"error", err, "within_zone", local.WithinZone)
		return local
	}

	return ZoneDecision{WithinZone: result.WithinZone, Source: SourceRemote}
}
