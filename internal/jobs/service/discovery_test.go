package service

import (
	"context"
	"testing"
	"time"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"go.mongodb.org/mongo-driver/bson"
)

func (f *fixture) seed(t *testing.T, owner structs.Caller, title, city string, lon, lat float64) *structs.Job {
	t.Helper()
	job, err := f.svc.Job.Create(context.Background(), owner, jobBody(title, city, lon, lat))
	if err != nil {
		t.Fatalf("Create(%s) error = %v", title, err)
	}
	return job
}

func (f *fixture) deactivate(t *testing.T, job *structs.Job) {
	t.Helper()
	if _, err := f.repo.UpdateByID(context.Background(), job.ID.Hex(), bson.M{"isActive": false}); err != nil {
		t.Fatal(err)
	}
}

func TestListExcludesInactive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Visible", "Kochi", 76.26, 9.93)
	hidden := f.seed(t, employerE, "Hidden", "Kochi", 76.26, 9.93)
	f.deactivate(t, hidden)

	queries := []structs.ListQuery{
		{},
		{StatusSet: true},
		{City: "Kochi", Category: "plumbing", StatusSet: true},
		{Employer: "me"},
	}
	for _, q := range queries {
		page, err := f.svc.Discovery.List(ctx, employerE, q)
		if err != nil {
			t.Fatalf("List(%+v) error = %v", q, err)
		}
		for _, j := range page.Items {
			if j.ID == hidden.ID {
				t.Errorf("List(%+v) returned inactive job", q)
			}
		}
	}

	page, err := f.svc.Discovery.Search(ctx, structs.SearchQuery{Lat: "9.93", Lng: "76.26"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].Title != "Visible" {
		t.Errorf("Search() total = %d", page.Total)
	}
}

func TestSearchExcludesInactiveWithFacets(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Visible", "Kochi", 76.26, 9.93)
	hidden := f.seed(t, employerE, "Hidden", "Kochi", 76.26, 9.93)
	f.deactivate(t, hidden)

	queries := []structs.SearchQuery{
		{},
		{Category: "plumbing"},
		{JobType: "contract"},
		{Skills: "pipe fitting,soldering"},
		{Category: "plumbing", JobType: "contract", Skills: "soldering", City: "Kochi"},
		{Lat: "9.93", Lng: "76.26", Distance: "10", Category: "plumbing", JobType: "contract", Skills: "pipe"},
	}
	for _, q := range queries {
		page, err := f.svc.Discovery.Search(ctx, q)
		if err != nil {
			t.Fatalf("Search(%+v) error = %v", q, err)
		}
		if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID == hidden.ID {
			t.Errorf("Search(%+v) total = %d items = %d, want only the active job", q, page.Total, len(page.Items))
		}
	}
}

func TestListStatusDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Open job", "Kochi", 0, 0)
	closed := f.seed(t, employerE, "Closed job", "Kochi", 0, 0)
	if _, err := f.repo.UpdateByID(ctx, closed.ID.Hex(), bson.M{"status": structs.JobClosed}); err != nil {
		t.Fatal(err)
	}

	open, _ := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{})
	if open.Total != 1 {
		t.Errorf("default listing total = %d, want 1", open.Total)
	}
	all, _ := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{StatusSet: true})
	if all.Total != 2 {
		t.Errorf("empty status listing total = %d, want 2", all.Total)
	}
	only, _ := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{Status: "closed", StatusSet: true})
	if only.Total != 1 || only.Items[0].Status != structs.JobClosed {
		t.Errorf("closed listing = %+v", only)
	}
}

func TestListEmployerMe(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Mine", "Kochi", 0, 0)
	f.seed(t, employerF, "Theirs", "Kochi", 0, 0)

	page, _ := f.svc.Discovery.List(ctx, employerE, structs.ListQuery{Employer: "me"})
	if page.Total != 1 || page.Items[0].Employer != employerE.ID {
		t.Errorf("employer=me total = %d", page.Total)
	}
	anon, _ := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{Employer: "me"})
	if anon.Total != 0 {
		t.Errorf("anonymous employer=me total = %d, want 0", anon.Total)
	}
}

func TestListPagingCoerced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		f.seed(t, employerE, "Job", "Kochi", 0, 0)
	}
	bad := []struct{ page, limit string }{
		{"0", "0"},
		{"-3", "-3"},
		{"1001", "101"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, q := range bad {
		page, err := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{Page: q.page, Limit: q.limit})
		if err != nil {
			t.Fatalf("List(%+v) error = %v", q, err)
		}
		if page.Page != 1 || page.Count != 12 || page.TotalPages != 2 {
			t.Errorf("%+v: page=%d count=%d pages=%d", q, page.Page, page.Count, page.TotalPages)
		}
	}
	second, _ := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{Page: "2"})
	if second.Count != 3 {
		t.Errorf("second page count = %d, want 3", second.Count)
	}
}

func TestListSortStripped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	low := jobBody("Cheap", "Kochi", 0, 0)
	low.Salary = structs.SalaryBody{Min: 100, Max: 200, Type: structs.PayDaily}
	high := jobBody("Dear", "Kochi", 0, 0)
	high.Salary = structs.SalaryBody{Min: 900, Max: 1200, Type: structs.PayDaily}
	for _, b := range []*structs.CreateJobBody{low, high} {
		if _, err := f.svc.Job.Create(ctx, employerE, b); err != nil {
			t.Fatal(err)
		}
	}

	page, err := f.svc.Discovery.List(ctx, structs.Caller{}, structs.ListQuery{SortBy: "-salary.min;$"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Items[0].Title != "Dear" {
		t.Errorf("first = %q, want Dear", page.Items[0].Title)
	}
}

func TestSearchNearestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Far", "Kochi", 76.40, 10.10)
	f.seed(t, employerE, "Near", "Kochi", 76.27, 9.94)
	f.seed(t, employerE, "Other city", "Chennai", 80.27, 13.08)

	page, err := f.svc.Discovery.Search(ctx, structs.SearchQuery{Lat: "9.93", Lng: "76.26", Distance: "100"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("Search() total = %d items = %d, want 2", page.Total, len(page.Items))
	}
	if page.Items[0].Title != "Near" {
		t.Errorf("first = %q, want Near", page.Items[0].Title)
	}
}

func TestSearchSkills(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Plumbing", "Kochi", 0, 0)

	hit, _ := f.svc.Discovery.Search(ctx, structs.SearchQuery{Skills: "welding, PIPE"})
	if hit.Total != 1 {
		t.Errorf("skills hit total = %d, want 1", hit.Total)
	}
	miss, _ := f.svc.Discovery.Search(ctx, structs.SearchQuery{Skills: "welding"})
	if miss.Total != 0 {
		t.Errorf("skills miss total = %d, want 0", miss.Total)
	}
}

func TestSearchLiteralPattern(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, employerE, "Kochi job", "Kochi", 0, 0)

	done := make(chan *structs.Page, 1)
	go func() {
		page, _ := f.svc.Discovery.Search(ctx, structs.SearchQuery{City: "Kochi", Skills: ".*"})
		done <- page
	}()
	select {
	case page := <-done:
		if page == nil || page.Total != 0 {
			t.Errorf("literal .* matched as wildcard: %+v", page)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search with regex metacharacters did not return")
	}

	city, _ := f.svc.Discovery.Search(ctx, structs.SearchQuery{City: "koch"})
	if city.Total != 1 {
		t.Errorf("city substring total = %d, want 1", city.Total)
	}
}

func TestSearchInvalidPoint(t *testing.T) {
	f := newFixture()
	for _, q := range []structs.SearchQuery{
		{Lat: "9.9"},
		{Lat: "abc", Lng: "76"},
		{Lat: "91", Lng: "76"},
		{Lat: "9", Lng: "181"},
	} {
		_, err := f.svc.Discovery.Search(context.Background(), q)
		wantKind(t, err, ecode.KindValidation)
	}
}

func TestRadius(t *testing.T) {
	tests := map[string]float64{"": 50, "0": 50, "-5": 50, "abc": 50, "10": 10, "9000": 500}
	for raw, want := range tests {
		if got := radius(raw); got != want {
			t.Errorf("radius(%q) = %v, want %v", raw, got, want)
		}
	}
}
