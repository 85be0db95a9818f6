package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/events"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
)

func TestScenarioApplyAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")

	if _, err := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "X"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	apps, err := f.svc.Application.ListForJob(ctx, employerE, job.ID.Hex())
	if err != nil {
		t.Fatalf("ListForJob() error = %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("ListForJob() returned %d applications, want 1", len(apps))
	}
	a := apps[0]
	if a.Worker != workerW.ID || a.Status != structs.StatusPending || a.CoverLetter != "X" {
		t.Errorf("application = %+v", a)
	}
}

func TestScenarioHireAndForeignWithdraw(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")
	app, err := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	hired, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), app.ID.Hex(), structs.StatusHired)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if hired.Status != structs.StatusHired {
		t.Errorf("Status = %q, want hired", hired.Status)
	}

	got, err := f.repo.FindByID(ctx, job.ID.Hex())
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Status != structs.JobInProgress || got.HiredWorker != workerW.ID {
		t.Errorf("job status = %q hiredWorker = %q", got.Status, got.HiredWorker)
	}

	wantKind(t, f.svc.Application.Withdraw(ctx, workerW2, job.ID.Hex(), app.ID.Hex()), ecode.KindForbidden)
	wantKind(t, f.svc.Application.Withdraw(ctx, workerW, job.ID.Hex(), app.ID.Hex()), ecode.KindConflict)
}

func TestApplyTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")

	if _, err := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), ""); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	_, err := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")
	wantKind(t, err, ecode.KindConflict)
}

func TestConcurrentApplyYieldsOneSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !ecode.IsKind(err, ecode.KindConflict):
			t.Errorf("Apply() error = %v, want conflict", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d successful applies, want 1", ok)
	}
	stored, _ := f.repo.FindByID(ctx, job.ID.Hex())
	if len(stored.Applicants) != 1 {
		t.Errorf("stored %d applications, want 1", len(stored.Applicants))
	}
}

func TestApplyGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")

	_, err := f.svc.Application.Apply(ctx, employerF, job.ID.Hex(), "")
	wantKind(t, err, ecode.KindForbidden)

	_, err = f.svc.Application.Apply(ctx, workerW, "0123456789abcdef01234567", "")
	wantKind(t, err, ecode.KindNotFound)

	_, err = f.svc.Application.Apply(ctx, workerW, "bad", "")
	wantKind(t, err, ecode.KindNotFound)
}

func TestApplySanitizesCoverLetter(t *testing.T) {
	f := newFixture()
	job := f.createJob(t, employerE, "Fix pipes")

	long := "<script>alert(1)</script> " + strings.Repeat("a", 2000)
	app, err := f.svc.Application.Apply(context.Background(), workerW, job.ID.Hex(), long)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if strings.Contains(app.CoverLetter, "<") {
		t.Errorf("cover letter kept markup: %q", app.CoverLetter[:20])
	}
	if n := len([]rune(app.CoverLetter)); n > 1000 {
		t.Errorf("cover letter length = %d, want <= 1000", n)
	}
}

func TestListForJobRequiresOwner(t *testing.T) {
	f := newFixture()
	job := f.createJob(t, employerE, "Fix pipes")

	_, err := f.svc.Application.ListForJob(context.Background(), employerF, job.ID.Hex())
	wantKind(t, err, ecode.KindForbidden)

	apps, err := f.svc.Application.ListForJob(context.Background(), employerE, job.ID.Hex())
	if err != nil || apps == nil || len(apps) != 0 {
		t.Errorf("ListForJob() = %v, %v, want empty non-nil", apps, err)
	}
}

func TestListMine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.createJob(t, employerE, "Fix pipes")
	second := f.createJob(t, employerF, "Paint wall")
	f.createJob(t, employerF, "Unrelated")

	if _, err := f.svc.Application.Apply(ctx, workerW, first.ID.Hex(), "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Application.Apply(ctx, workerW, second.ID.Hex(), "second"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Application.Apply(ctx, workerW2, second.ID.Hex(), ""); err != nil {
		t.Fatal(err)
	}

	mine, err := f.svc.Application.ListMine(ctx, workerW)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListMine() returned %d, want 2", len(mine))
	}
	for i := 1; i < len(mine); i++ {
		if mine[i].AppliedAt.After(mine[i-1].AppliedAt) {
			t.Errorf("ListMine() not sorted by appliedAt desc")
		}
	}
	for _, m := range mine {
		if m.Job.Title == "" || m.Job.Employer == "" {
			t.Errorf("job summary not filled: %+v", m.Job)
		}
	}

	_, err = f.svc.Application.ListMine(ctx, employerE)
	wantKind(t, err, ecode.KindForbidden)
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []structs.ApplicationStatus
		to    structs.ApplicationStatus
		wantK ecode.Kind
	}{
		{name: "pending to shortlisted", to: structs.StatusShortlisted},
		{name: "pending to pending", to: structs.StatusPending},
		{name: "shortlisted to hired", path: []structs.ApplicationStatus{structs.StatusShortlisted}, to: structs.StatusHired},
		{name: "shortlisted back to pending", path: []structs.ApplicationStatus{structs.StatusShortlisted}, to: structs.StatusPending, wantK: ecode.KindConflict},
		{name: "rejected to hired", path: []structs.ApplicationStatus{structs.StatusRejected}, to: structs.StatusHired, wantK: ecode.KindConflict},
		{name: "hired to rejected", path: []structs.ApplicationStatus{structs.StatusHired}, to: structs.StatusRejected, wantK: ecode.KindConflict},
		{name: "hired to hired", path: []structs.ApplicationStatus{structs.StatusHired}, to: structs.StatusHired},
		{name: "unknown status", to: "accepted", wantK: ecode.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			job := f.createJob(t, employerE, "Fix pipes")
			app, err := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range tt.path {
				if _, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), app.ID.Hex(), s); err != nil {
					t.Fatalf("SetStatus(%s) error = %v", s, err)
				}
			}

			got, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), app.ID.Hex(), tt.to)
			if tt.wantK != "" {
				wantKind(t, err, tt.wantK)
				return
			}
			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			if got.Status != tt.to {
				t.Errorf("Status = %q, want %q", got.Status, tt.to)
			}
		})
	}
}

func TestSetStatusGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")
	app, _ := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")

	_, err := f.svc.Application.SetStatus(ctx, employerF, job.ID.Hex(), app.ID.Hex(), structs.StatusHired)
	wantKind(t, err, ecode.KindForbidden)

	_, err = f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), "0123456789abcdef01234567", structs.StatusHired)
	wantKind(t, err, ecode.KindNotFound)

	_, err = f.svc.Application.SetStatus(ctx, workerW, job.ID.Hex(), app.ID.Hex(), structs.StatusHired)
	wantKind(t, err, ecode.KindForbidden)
}

func TestSecondHireConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")
	a1, _ := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")
	a2, _ := f.svc.Application.Apply(ctx, workerW2, job.ID.Hex(), "")

	if _, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), a1.ID.Hex(), structs.StatusHired); err != nil {
		t.Fatalf("first hire error = %v", err)
	}
	_, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), a2.ID.Hex(), structs.StatusHired)
	wantKind(t, err, ecode.KindConflict)

	stored, _ := f.repo.FindByID(ctx, job.ID.Hex())
	if stored.HiredWorker != workerW.ID {
		t.Errorf("HiredWorker = %q, want %q", stored.HiredWorker, workerW.ID)
	}
}

func TestSetStatusEmitsOnChangeOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	job := f.createJob(t, employerE, "Fix pipes")
	app, _ := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")

	for _, s := range []structs.ApplicationStatus{structs.StatusPending, structs.StatusShortlisted} {
		if _, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), app.ID.Hex(), s); err != nil {
			t.Fatal(err)
		}
	}
	f.published(t)
	changed := 0
	for _, e := range f.events.Events() {
		if e.Type == events.ApplicationStatusChanged {
			changed++
			if e.Status != string(structs.StatusShortlisted) || e.Worker != workerW.ID || e.OccurredAt.IsZero() {
				t.Errorf("event = %+v", e)
			}
		}
	}
	if changed != 1 {
		t.Errorf("%d status events, want 1", changed)
	}
}

func TestWithdraw(t *testing.T) {
	for _, status := range []structs.ApplicationStatus{structs.StatusPending, structs.StatusShortlisted, structs.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			job := f.createJob(t, employerE, "Fix pipes")
			app, _ := f.svc.Application.Apply(ctx, workerW, job.ID.Hex(), "")
			if status != structs.StatusPending {
				if _, err := f.svc.Application.SetStatus(ctx, employerE, job.ID.Hex(), app.ID.Hex(), status); err != nil {
					t.Fatal(err)
				}
			}

			if err := f.svc.Application.Withdraw(ctx, workerW, job.ID.Hex(), app.ID.Hex()); err != nil {
				t.Fatalf("Withdraw() error = %v", err)
			}
			apps, _ := f.svc.Application.ListForJob(ctx, employerE, job.ID.Hex())
			mine, _ := f.svc.Application.ListMine(ctx, workerW)
			if len(apps) != 0 || len(mine) != 0 {
				t.Errorf("application still listed: job=%d mine=%d", len(apps), len(mine))
			}
		})
	}
}

func TestWithdrawMissingApplication(t *testing.T) {
	f := newFixture()
	job := f.createJob(t, employerE, "Fix pipes")
	err := f.svc.Application.Withdraw(context.Background(), workerW, job.ID.Hex(), "0123456789abcdef01234567")
	wantKind(t, err, ecode.KindNotFound)
}

func TestRepositoryFailureSurfaces(t *testing.T) {
	f := newFixture()
	job := f.createJob(t, employerE, "Fix pipes")
	f.repo.Fail = ecode.NewTransient("database unavailable", nil)

	_, err := f.svc.Application.Apply(context.Background(), workerW, job.ID.Hex(), "")
	wantKind(t, err, ecode.KindTransient)
}
