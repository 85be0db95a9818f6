package service

import (
	"context"
	"strings"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/observes"
	"github.com/skillconnect/jobcore/internal/sanitize"
)

const (
	// DefaultRadiusKm is the search radius when none is given.
	DefaultRadiusKm = 50.0
	// MaxRadiusKm caps the search radius.
	MaxRadiusKm = 500.0

	employerSelf = "me"
)

// Discovery answers listing and proximity queries over active jobs.
type Discovery struct {
	repo repository.JobRepository
}

// List returns a page of active jobs matching the listing facets.
func (d *Discovery) List(ctx context.Context, caller structs.Caller, q structs.ListQuery) (*structs.Page, error) {
	ctx, span := observes.Start(ctx, observes.LayerService, "Discovery.List")
	var err error
	defer func() { observes.End(span, err) }()

	f := repository.JobFilter{
		Category: sanitize.Term(q.Category),
		JobType:  sanitize.Term(q.JobType),
		City:     sanitize.Term(q.City),
		Employer: sanitize.Term(q.Employer),
	}
	if q.StatusSet {
		f.Status = sanitize.Term(q.Status)
	} else {
		f.Status = string(structs.JobOpen)
	}
	if f.Employer == employerSelf && !caller.Anonymous() {
		f.Employer = caller.ID
	}

	page, limit := sanitize.Page(q.Page), sanitize.Limit(q.Limit)
	opts := repository.FindOptions{
		Sort:  sanitize.Sort(q.SortBy, sanitize.DefaultSort),
		Skip:  int64((page - 1) * limit),
		Limit: int64(limit),
	}

	p, err := d.fetch(ctx, f, opts, page, limit)
	return p, err
}

// Search returns open active jobs near a point, nearest first. Without a
// point it behaves like a facet listing ordered by creation time.
func (d *Discovery) Search(ctx context.Context, q structs.SearchQuery) (*structs.Page, error) {
	ctx, span := observes.Start(ctx, observes.LayerService, "Discovery.Search")
	var err error
	defer func() { observes.End(span, err) }()

	f := repository.JobFilter{
		Status:   string(structs.JobOpen),
		Category: sanitize.Term(q.Category),
		JobType:  sanitize.Term(q.JobType),
		City:     sanitize.Term(q.City),
		Skills:   sanitize.CSV(q.Skills),
	}
	near, err := parseNear(q)
	if err != nil {
		return nil, err
	}
	f.Near = near

	page, limit := sanitize.Page(q.Page), sanitize.Limit(q.Limit)
	opts := repository.FindOptions{
		Skip:  int64((page - 1) * limit),
		Limit: int64(limit),
	}
	if near == nil {
		opts.Sort = sanitize.SortKey{Field: "createdAt", Desc: true}
	}

	p, err := d.fetch(ctx, f, opts, page, limit)
	return p, err
}

func (d *Discovery) fetch(ctx context.Context, f repository.JobFilter, opts repository.FindOptions, page, limit int) (*structs.Page, error) {
	items, err := d.repo.FindMany(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	total, err := d.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return structs.NewPage(items, total, page, limit), nil
}

// parseNear reads the optional search point. Both coordinates must be given
// together and be in range.
func parseNear(q structs.SearchQuery) (*repository.GeoNear, error) {
	rawLat, rawLng := strings.TrimSpace(q.Lat), strings.TrimSpace(q.Lng)
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}
	lat, latOK := sanitize.Float(rawLat)
	lng, lngOK := sanitize.Float(rawLng)
	fields := map[string]string{}
	if !latOK || lat < -90 || lat > 90 {
		fields["lat"] = "lat must be a number within [-90, 90]"
	}
	if !lngOK || lng < -180 || lng > 180 {
		fields["lng"] = "lng must be a number within [-180, 180]"
	}
	if len(fields) > 0 {
		return nil, ecode.NewValidation("invalid search point", fields)
	}
	return &repository.GeoNear{Lon: lng, Lat: lat, RadiusKm: radius(q.Distance)}, nil
}

func radius(raw string) float64 {
	r, ok := sanitize.Float(raw)
	if !ok || r <= 0 {
		return DefaultRadiusKm
	}
	if r > MaxRadiusKm {
		return MaxRadiusKm
	}
	return r
}
