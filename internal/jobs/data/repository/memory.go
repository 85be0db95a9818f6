package repository

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryJobRepository keeps jobs in process. It honours the same guarded
// update semantics as the MongoDB repository and backs the memory driver and
// tests.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[primitive.ObjectID]*structs.Job
	// Fail, when set, is returned by every call before touching state.
	Fail error
}

// NewMemoryJobRepository creates an empty in-memory repository.
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{jobs: make(map[primitive.ObjectID]*structs.Job)}
}

// now mirrors the millisecond precision of stored dates.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *MemoryJobRepository) EnsureIndexes(context.Context) error { return r.Fail }

func (r *MemoryJobRepository) FindMany(_ context.Context, f JobFilter, opts FindOptions) ([]*structs.Job, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.match(f)
	switch {
	case f.Near != nil && opts.Sort.Field == "":
		sort.SliceStable(matched, func(i, j int) bool {
			return distanceKm(f.Near, matched[i]) < distanceKm(f.Near, matched[j])
		})
	default:
		key := opts.Sort
		if key.Field == "" {
			key.Field, key.Desc = "_id", false
		}
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareField(matched[i], matched[j], key.Field)
			if c == 0 {
				c = bytes.Compare(matched[i].ID[:], matched[j].ID[:])
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	start := int(opts.Skip)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if opts.Limit > 0 && start+int(opts.Limit) < end {
		end = start + int(opts.Limit)
	}

	out := make([]*structs.Job, 0, end-start)
	for _, j := range matched[start:end] {
		out = append(out, cloneJob(j))
	}
	return out, nil
}

func (r *MemoryJobRepository) Count(_ context.Context, f JobFilter) (int64, error) {
	if r.Fail != nil {
		return 0, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(f))), nil
}

func (r *MemoryJobRepository) match(f JobFilter) []*structs.Job {
	var out []*structs.Job
	for _, j := range r.jobs {
		if matches(f, j) {
			out = append(out, j)
		}
	}
	return out
}

func matches(f JobFilter, j *structs.Job) bool {
	if !j.IsActive {
		return false
	}
	if f.Category != "" && string(j.Category) != f.Category {
		return false
	}
	if f.JobType != "" && string(j.JobType) != f.JobType {
		return false
	}
	if f.Status != "" && string(j.Status) != f.Status {
		return false
	}
	if f.Employer != "" && j.Employer != f.Employer {
		return false
	}
	if f.City != "" && !containsFold(j.Location.City, f.City) {
		return false
	}
	if len(f.Skills) > 0 && !anySkill(j.Skills, f.Skills) {
		return false
	}
	if f.Near != nil && distanceKm(f.Near, j) > f.Near.RadiusKm {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anySkill(skills, terms []string) bool {
	for _, s := range skills {
		for _, t := range terms {
			if containsFold(s, t) {
				return true
			}
		}
	}
	return false
}

// distanceKm is the great-circle distance from the filter point to the job.
func distanceKm(n *GeoNear, j *structs.Job) float64 {
	const rad = math.Pi / 180
	lat1, lat2 := n.Lat*rad, j.Location.Lat()*rad
	dLat := lat2 - lat1
	dLon := (j.Location.Lon() - n.Lon) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func compareField(a, b *structs.Job, field string) int {
	switch field {
	case "_id":
		return bytes.Compare(a.ID[:], b.ID[:])
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "views":
		return cmpNum(float64(a.Views), float64(b.Views))
	case "salary.min":
		return cmpNum(a.Salary.Min, b.Salary.Min)
	case "salary.max":
		return cmpNum(a.Salary.Max, b.Salary.Max)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "category":
		return strings.Compare(string(a.Category), string(b.Category))
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "urgency":
		return strings.Compare(string(a.Urgency), string(b.Urgency))
	}
	return comparePath(a, b, field)
}

// comparePath orders two jobs by a dotted document path. Missing values sort
// first; values of different kinds compare equal.
func comparePath(a, b *structs.Job, field string) int {
	x, okA := lookupPath(a, field)
	y, okB := lookupPath(b, field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}

	if xs, ok := x.StringValueOK(); ok {
		if ys, ok := y.StringValueOK(); ok {
			return strings.Compare(xs, ys)
		}
	}
	if xt, ok := x.DateTimeOK(); ok {
		if yt, ok := y.DateTimeOK(); ok {
			return cmpNum(float64(xt), float64(yt))
		}
	}
	if xn, ok := rawNumber(x); ok {
		if yn, ok := rawNumber(y); ok {
			return cmpNum(xn, yn)
		}
	}
	if xb, ok := x.BooleanOK(); ok {
		if yb, ok := y.BooleanOK(); ok && xb != yb {
			if xb {
				return 1
			}
			return -1
		}
	}
	return 0
}

func lookupPath(j *structs.Job, field string) (bson.RawValue, bool) {
	raw, err := bson.Marshal(j)
	if err != nil {
		return bson.RawValue{}, false
	}
	v, err := bson.Raw(raw).LookupErr(strings.Split(field, ".")...)
	if err != nil || v.Type == bson.TypeNull {
		return bson.RawValue{}, false
	}
	return v, true
}

func rawNumber(v bson.RawValue) (float64, bool) {
	if f, ok := v.DoubleOK(); ok {
		return f, true
	}
	if i, ok := v.Int32OK(); ok {
		return float64(i), true
	}
	if i, ok := v.Int64OK(); ok {
		return float64(i), true
	}
	return 0, false
}

func cmpNum(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r *MemoryJobRepository) FindByID(_ context.Context, id string) (*structs.Job, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[oid]
	if !ok {
		return nil, errJobNotFound
	}
	return cloneJob(j), nil
}

func (r *MemoryJobRepository) FindByApplicant(_ context.Context, workerID string) ([]*structs.Job, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*structs.Job{}
	for _, j := range r.jobs {
		if _, ok := j.FindApplicant(workerID); ok {
			out = append(out, cloneJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if c := out[i].CreatedAt.Compare(out[k].CreatedAt); c != 0 {
			return c > 0
		}
		return bytes.Compare(out[i].ID[:], out[k].ID[:]) > 0
	})
	return out, nil
}

func (r *MemoryJobRepository) Create(_ context.Context, job *structs.Job) (*structs.Job, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	t := now()
	job.ID = primitive.NewObjectID()
	job.CreatedAt, job.UpdatedAt = t, t
	if job.Applicants == nil {
		job.Applicants = []structs.Application{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = cloneJob(job)
	return job, nil
}

func (r *MemoryJobRepository) UpdateByID(_ context.Context, id string, fields bson.M) (*structs.Job, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[oid]
	if !ok {
		return nil, errJobNotFound
	}
	if status, ok := jobStatusOf(fields); ok && hireGuard(status) != nil &&
		!structs.CanSetJobStatus(status, j.HiredWorker != "") {
		return nil, hireStateMiss(j, status)
	}

	// Apply $set the way the server would: on the document, not the struct.
	raw, err := bson.Marshal(j)
	if err != nil {
		return nil, ecode.NewInternal("failed to encode job", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, ecode.NewInternal("failed to decode job", err)
	}
	for k, v := range stripProtected(fields) {
		doc[k] = v
	}
	doc["updatedAt"] = now()

	raw, err = bson.Marshal(doc)
	if err != nil {
		return nil, ecode.NewInternal(fmt.Sprintf("failed to encode update for job %s", id), err)
	}
	var updated structs.Job
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, ecode.NewInternal("failed to decode updated job", err)
	}
	r.jobs[oid] = &updated
	return cloneJob(&updated), nil
}

func (r *MemoryJobRepository) DeleteByID(_ context.Context, id string) error {
	if r.Fail != nil {
		return r.Fail
	}
	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[oid]; !ok {
		return errJobNotFound
	}
	delete(r.jobs, oid)
	return nil
}

func (r *MemoryJobRepository) PushApplication(_ context.Context, jobID string, app *structs.Application) error {
	if r.Fail != nil {
		return r.Fail
	}
	oid, err := parseID(jobID, errJobNotFound)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[oid]
	if !ok {
		return errJobNotFound
	}
	if _, dup := j.FindApplicant(app.Worker); dup {
		return errAlreadyApplied
	}
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	j.Applicants = append(j.Applicants, *app)
	j.UpdatedAt = now()
	return nil
}

func (r *MemoryJobRepository) RemoveApplication(_ context.Context, jobID, appID string) error {
	if r.Fail != nil {
		return r.Fail
	}
	oid, err := parseID(jobID, errJobNotFound)
	if err != nil {
		return err
	}
	aid, err := parseID(appID, errApplicationNotFound)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[oid]
	if !ok {
		return errJobNotFound
	}
	for i, a := range j.Applicants {
		if a.ID != aid {
			continue
		}
		if a.Status == structs.StatusHired {
			return errHiredApplication
		}
		j.Applicants = append(j.Applicants[:i:i], j.Applicants[i+1:]...)
		j.UpdatedAt = now()
		return nil
	}
	return removeMiss(j, aid)
}

func (r *MemoryJobRepository) SetApplicationStatus(_ context.Context, jobID, appID string, from, to structs.ApplicationStatus, worker string) (*structs.Job, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	oid, err := parseID(jobID, errJobNotFound)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(appID, errApplicationNotFound)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[oid]
	if !ok {
		return nil, errJobNotFound
	}
	app, ok := j.FindApplication(aid)
	hiring := to == structs.StatusHired
	if !ok || app.Status != from || (hiring && j.HiredWorker != "" && j.HiredWorker != worker) {
		return nil, statusMiss(j, aid, from, to, worker)
	}

	app.Status = to
	if hiring {
		j.HiredWorker = worker
		j.Status = structs.JobInProgress
	}
	j.UpdatedAt = now()
	return cloneJob(j), nil
}

func (r *MemoryJobRepository) IncrementViews(_ context.Context, id string) error {
	if r.Fail != nil {
		return r.Fail
	}
	oid, err := parseID(id, errJobNotFound)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[oid]
	if !ok {
		return errJobNotFound
	}
	j.Views++
	return nil
}

func (r *MemoryJobRepository) CountByEmployer(context.Context) (map[string]int64, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, j := range r.jobs {
		counts[j.Employer]++
	}
	return counts, nil
}

func cloneJob(j *structs.Job) *structs.Job {
	c := *j
	c.Requirements = append([]string(nil), j.Requirements...)
	c.Skills = append([]string(nil), j.Skills...)
	c.Location.Coordinates = append([]float64(nil), j.Location.Coordinates...)
	c.Applicants = append([]structs.Application{}, j.Applicants...)
	if j.Duration != nil {
		d := *j.Duration
		c.Duration = &d
	}
	return &c
}
