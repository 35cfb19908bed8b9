package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"lanarena/models"
	"lanarena/realtime"
	"lanarena/storage"
)

func TestSubmitStoresUploadAndPendingRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.broker.Subscribe(realtime.TableRegistrations)
	defer sub.Close()

	upload := &Upload{Filename: "student-id.png", ContentType: "image/png", Size: 4}
	reg, err := f.registrations.Submit(ctx, validForm(), upload, strings.NewReader("\x89PNG"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if reg.Status != models.RegistrationPending {
		t.Fatalf("status = %s, want pending", reg.Status)
	}
	if reg.CollegeIDURL == nil || !strings.HasPrefix(*reg.CollegeIDURL, storage.CollegeIDPrefix) || !strings.HasSuffix(*reg.CollegeIDURL, ".png") {
		t.Fatalf("college_id_url = %v", reg.CollegeIDURL)
	}
	if got := []string(reg.TeamMembers); len(got) != 2 || got[0] != "Ravi (222)" {
		t.Fatalf("team members = %q", got)
	}

	rc, contentType, err := f.store.Get(ctx, *reg.CollegeIDURL)
	if err != nil {
		t.Fatalf("stored upload: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "\x89PNG" || contentType != "image/png" {
		t.Fatalf("stored %q (%s)", body, contentType)
	}

	ev := nextEvent(t, sub)
	if ev.Type != realtime.Insert || ev.RowID() != reg.ID {
		t.Fatalf("event = %s %s, want INSERT %s", ev.Type, ev.RowID(), reg.ID)
	}
}

func TestSubmitInvalidFormStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	form := validForm()
	form.CaptainEmail = "abc"
	upload := &Upload{Filename: "id.png", ContentType: "image/png", Size: 4}
	_, err := f.registrations.Submit(ctx, form, upload, strings.NewReader("data"))

	fe, ok := AsFieldErrors(err)
	if !ok || fe["captain_email"] != "Invalid email format" {
		t.Fatalf("err = %v, want captain_email field error", err)
	}
	objects, _ := f.store.List(ctx, storage.CollegeIDPrefix)
	if len(objects) != 0 {
		t.Fatalf("stored %d objects, want 0", len(objects))
	}
	var n int64
	f.db.Model(&models.Registration{}).Count(&n)
	if n != 0 {
		t.Fatalf("inserted %d rows, want 0", n)
	}
}

func TestSubmitRejectsUnsupportedUpload(t *testing.T) {
	f := newFixture(t)
	upload := &Upload{Filename: "id.exe", ContentType: "application/x-msdownload", Size: 4}
	_, err := f.registrations.Submit(context.Background(), validForm(), upload, strings.NewReader("MZ"))
	if !errors.Is(err, ErrUnsupportedUpload) {
		t.Fatalf("err = %v, want ErrUnsupportedUpload", err)
	}
}

func TestSubmitRemovesUploadWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.db.Migrator().DropTable(&models.Registration{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	upload := &Upload{Filename: "id.pdf", ContentType: "application/pdf", Size: 4}
	if _, err := f.registrations.Submit(ctx, validForm(), upload, strings.NewReader("%PDF")); err == nil {
		t.Fatal("Submit succeeded without a table")
	}
	objects, _ := f.store.List(ctx, storage.CollegeIDPrefix)
	if len(objects) != 0 {
		t.Fatalf("orphan uploads left: %v", objects)
	}
}

func TestUpdateStatusOnlyFromPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.seedRegistration(t, "alpha", models.RegistrationPending, time.Now().UTC())
	sub := f.broker.Subscribe(realtime.TableRegistrations)
	defer sub.Close()

	updated, err := f.registrations.UpdateStatus(ctx, reg.ID, models.RegistrationVerified)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if updated.Status != models.RegistrationVerified {
		t.Fatalf("status = %s", updated.Status)
	}
	if got := updated.Actions(); len(got) != 1 || got[0] != "delete" {
		t.Fatalf("actions = %v, want [delete]", got)
	}
	if ev := nextEvent(t, sub); ev.Type != realtime.Update || ev.RowID() != reg.ID {
		t.Fatalf("event = %s %s", ev.Type, ev.RowID())
	}

	if _, err := f.registrations.UpdateStatus(ctx, reg.ID, models.RegistrationRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second transition err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.registrations.UpdateStatus(ctx, reg.ID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bogus status err = %v, want ErrInvalidStatus", err)
	}
	if _, err := f.registrations.UpdateStatus(ctx, "missing", models.RegistrationVerified); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("missing row err = %v", err)
	}
}

func TestListSearchMatchesSpecialCharactersLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	f.seedRegistration(t, "rock_n_roll", models.RegistrationPending, base)
	f.seedRegistration(t, "rockxnxroll", models.RegistrationPending, base.Add(time.Hour))
	f.seedRegistration(t, "100% aim", models.RegistrationPending, base.Add(2*time.Hour))
	f.seedRegistration(t, `back\slash`, models.RegistrationPending, base.Add(3*time.Hour))

	for search, want := range map[string]string{
		"k_n":  "rock_n_roll",
		"0% a": "100% aim",
		`k\s`:  `back\slash`,
	} {
		regs, err := f.registrations.List(ctx, RegistrationFilter{Search: search})
		if err != nil {
			t.Fatalf("search %q: %v", search, err)
		}
		if len(regs) != 1 || regs[0].TeamName != want {
			t.Errorf("search %q matched %d rows, want only %q", search, len(regs), want)
		}
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	f.seedRegistration(t, "alpha", models.RegistrationPending, base)
	f.seedRegistration(t, "bravo", models.RegistrationVerified, base.Add(time.Hour))
	f.seedRegistration(t, "charlie", models.RegistrationRejected, base.Add(2*time.Hour))

	tests := []struct {
		name   string
		filter RegistrationFilter
		want   []string
	}{
		{"all newest first", RegistrationFilter{}, []string{"charlie", "bravo", "alpha"}},
		{"status", RegistrationFilter{Status: "verified"}, []string{"bravo"}},
		{"explicit all", RegistrationFilter{Status: "all"}, []string{"charlie", "bravo", "alpha"}},
		{"search is case insensitive", RegistrationFilter{Search: "ALPHA"}, []string{"alpha"}},
		{"search college", RegistrationFilter{Search: "charlie college"}, []string{"charlie"}},
		{"search and status", RegistrationFilter{Search: "a", Status: "pending"}, []string{"alpha"}},
		{"underscore is literal", RegistrationFilter{Search: "_"}, nil},
		{"percent is literal", RegistrationFilter{Search: "%"}, nil},
		{"underscore inside a word", RegistrationFilter{Search: "a_p"}, nil},
	}
	for _, tt := range tests {
		regs, err := f.registrations.List(ctx, tt.filter)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		var got []string
		for _, r := range regs {
			got = append(got, r.TeamName)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := f.registrations.List(ctx, RegistrationFilter{Status: "archived"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("unknown status err = %v", err)
	}

	counts, err := f.registrations.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (models.RegistrationStats{Total: 3, Pending: 1, Verified: 1, Rejected: 1}) {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestCreateDropsBlankMembersAndNotes(t *testing.T) {
	f := newFixture(t)
	reg, err := f.registrations.Create(context.Background(), AdminRegistrationInput{
		TeamName:     "Walk In",
		College:      "GEU",
		CaptainName:  "Dev",
		CaptainEmail: "dev@example.com",
		CaptainPhone: "123",
		TeamMembers:  []string{"A", " ", "B"},
		Notes:        "   ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(reg.TeamMembers) != 2 || reg.Notes != nil || reg.Status != models.RegistrationPending {
		t.Fatalf("created %+v", reg)
	}

	if _, err := f.registrations.Create(context.Background(), AdminRegistrationInput{}); err == nil {
		t.Fatal("empty admin create succeeded")
	}
}

func TestDeleteRemovesRowAndUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	upload := &Upload{Filename: "id.jpg", ContentType: "image/jpeg", Size: 3}
	reg, err := f.registrations.Submit(ctx, validForm(), upload, strings.NewReader("jpg"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := f.registrations.Delete(ctx, reg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.registrations.Get(ctx, reg.ID); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("Get after delete = %v", err)
	}
	if _, _, err := f.store.Get(ctx, *reg.CollegeIDURL); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("upload still present: %v", err)
	}
	if err := f.registrations.Delete(ctx, reg.ID); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("second delete = %v", err)
	}
}

func TestCollegeIDLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	upload := &Upload{Filename: "id.pdf", ContentType: "application/pdf", Size: 4}
	reg, err := f.registrations.Submit(ctx, validForm(), upload, strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	url, expires, err := f.registrations.CollegeIDLink(ctx, reg.ID)
	if err != nil {
		t.Fatalf("CollegeIDLink: %v", err)
	}
	if !strings.HasPrefix(url, "/files/") || !strings.Contains(url, "?token=") {
		t.Fatalf("url = %q", url)
	}
	if d := time.Until(expires); d <= 9*time.Minute || d > 10*time.Minute {
		t.Fatalf("expires in %s, want about 10m", d)
	}

	manual := f.seedRegistration(t, "manual", models.RegistrationPending, time.Now().UTC())
	if _, _, err := f.registrations.CollegeIDLink(ctx, manual.ID); !errors.Is(err, ErrNoCollegeID) {
		t.Fatalf("no upload err = %v", err)
	}
}

func TestCountAudience(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	f.seedRegistration(t, "a", models.RegistrationPending, now)
	f.seedRegistration(t, "b", models.RegistrationPending, now)
	f.seedRegistration(t, "c", models.RegistrationVerified, now)
	f.seedRegistration(t, "d", models.RegistrationRejected, now)

	want := map[models.Audience]int64{
		models.AudienceAll:        4,
		models.AudienceRegistered: 4,
		models.AudiencePending:    2,
		models.AudienceVerified:   1,
	}
	for audience, n := range want {
		got, err := f.registrations.CountAudience(ctx, audience)
		if err != nil {
			t.Fatalf("%s: %v", audience, err)
		}
		if got != n {
			t.Errorf("CountAudience(%s) = %d, want %d", audience, got, n)
		}
	}
}

func TestExportRows(t *testing.T) {
	t.Parallel()
	regs := []models.Registration{
		{TeamName: "A", College: "C1", CaptainName: "X", CaptainEmail: "x@y.z", CaptainPhone: "1", Status: models.RegistrationPending,
			CreatedAt: time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))},
		{TeamName: "B", Status: models.RegistrationVerified, CreatedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	rows := ExportRows(regs)
	if len(rows) != len(regs)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(regs)+1)
	}
	if strings.Join(rows[0], ",") != "Team Name,College,Captain,Email,Phone,Status,Date" {
		t.Fatalf("header = %v", rows[0])
	}
	if strings.Join(rows[1], ",") != "A,C1,X,x@y.z,1,pending,2025-03-01" {
		t.Fatalf("row = %v", rows[1])
	}
}

type fakeSheets struct {
	sheet string
	rows  [][]string
}

func (s *fakeSheets) Replace(_ context.Context, sheet string, rows [][]string) (int, error) {
	s.sheet, s.rows = sheet, rows
	return len(rows), nil
}

func TestExportToSheets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedRegistration(t, "a", models.RegistrationPending, time.Now().UTC())
	f.seedRegistration(t, "b", models.RegistrationVerified, time.Now().UTC())

	if _, err := f.registrations.ExportToSheets(ctx, nil, RegistrationFilter{}); !errors.Is(err, ErrSheetsDisabled) {
		t.Fatalf("nil exporter err = %v", err)
	}

	sheets := &fakeSheets{}
	n, err := f.registrations.ExportToSheets(ctx, sheets, RegistrationFilter{Status: "verified"})
	if err != nil {
		t.Fatalf("ExportToSheets: %v", err)
	}
	if n != 2 || sheets.sheet != SheetRegistrations || sheets.rows[1][0] != "b" {
		t.Fatalf("wrote %d rows to %q: %v", n, sheets.sheet, sheets.rows)
	}
}

func TestCheckInPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.seedRegistration(t, "pending", models.RegistrationPending, time.Now().UTC())
	verified := f.seedRegistration(t, "verified", models.RegistrationVerified, time.Now().UTC())

	if _, _, err := f.registrations.CheckInPass(ctx, pending.ID); !errors.Is(err, ErrPassUnavailable) {
		t.Fatalf("pending pass err = %v", err)
	}
	png, reg, err := f.registrations.CheckInPass(ctx, verified.ID)
	if err != nil {
		t.Fatalf("CheckInPass: %v", err)
	}
	if !strings.HasPrefix(string(png), "\x89PNG") {
		t.Fatal("pass is not a PNG")
	}
	if got := PassPayload(reg); got != "LANARENA:"+verified.ID+":verified" {
		t.Fatalf("payload = %q", got)
	}
}
