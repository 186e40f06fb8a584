package patientstore_test

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/nonibytes/patientstore/patientstore"
	"github.com/nonibytes/patientstore/patientstore/datefilter"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlite"
)

func monotonicNow(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func newStore(t *testing.T) (*patientstore.Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	opts := patientstore.DefaultStoreOptions()
	opts.Now = monotonicNow(time.Unix(1700000000, 0))

	s, err := patientstore.Create(context.Background(), sqlite.New(dbPath), opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dbPath
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func patient(family string, born time.Time) patientstore.Patient {
	return patientstore.Patient{
		Name:      patientstore.HumanName{Use: "official", Family: family, Given: []string{"Ivan", "Ivanovich"}},
		Gender:    patientstore.GenderMale,
		BirthDate: born,
		Active:    patientstore.ActiveTrue,
	}
}

// seed stores a, b, c, d born 2004-01-01, 2005-01-01, 2010-06-15, 2015-01-01.
func seed(t *testing.T, s *patientstore.Store) {
	t.Helper()
	for _, p := range []patientstore.Patient{
		patient("a", date(2004, 1, 1)),
		patient("b", date(2005, 1, 1)),
		patient("c", date(2010, 6, 15)),
		patient("d", date(2015, 1, 1)),
	} {
		if _, err := s.Put(context.Background(), p); err != nil {
			t.Fatalf("Put %s: %v", p.Name.Family, err)
		}
	}
}

func families(ps []patientstore.Patient) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.Name.Family)
	}
	return out
}

func TestPutGetUpdateDelete_SQLite(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	in := patient("Ivanov", date(2000, 6, 15))
	in.Gender = "Female"
	in.Active = "FALSE"
	stored, err := s.Put(ctx, in)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if stored.ID == uuid.Nil {
		t.Fatalf("expected assigned id")
	}
	if stored.Gender != patientstore.GenderFemale || stored.Active != patientstore.ActiveFalse {
		t.Fatalf("expected normalized enums, got gender=%s active=%s", stored.Gender, stored.Active)
	}

	got, err := s.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Name, stored.Name) || !got.BirthDate.Equal(stored.BirthDate) {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, stored)
	}
	if got.Meta.CreatedAtMS == 0 || got.Meta.UpdatedAtMS == 0 {
		t.Fatalf("expected timestamps, got %+v", got.Meta)
	}

	got.Name.Family = "Petrov"
	got.Name.Given = nil
	updated, err := s.Update(ctx, got)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name.Family != "Petrov" || len(updated.Name.Given) != 0 {
		t.Fatalf("update not applied: %+v", updated.Name)
	}
	if updated.Meta.CreatedAtMS != got.Meta.CreatedAtMS || updated.Meta.UpdatedAtMS <= got.Meta.UpdatedAtMS {
		t.Fatalf("unexpected meta after update: before=%+v after=%+v", got.Meta, updated.Meta)
	}

	deleted, err := s.Delete(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Fatalf("expected deleted=true")
	}
	deleted, err = s.Delete(ctx, stored.ID)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v %v", deleted, err)
	}

	_, err = s.Get(ctx, stored.ID)
	if err == nil || !patientstore.IsKind(err, patientstore.ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
	_, err = s.Update(ctx, got)
	if err == nil || !patientstore.IsKind(err, patientstore.ErrNotFound) {
		t.Fatalf("expected not found on update, got: %v", err)
	}
}

func TestPutValidates_SQLite(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	cases := map[string]patientstore.Patient{
		"name.family": patient("", date(2000, 1, 1)),
		"birthDate":   patient("x", time.Time{}),
		"gender":      func() patientstore.Patient { p := patient("x", date(2000, 1, 1)); p.Gender = "robot"; return p }(),
		"active":      func() patientstore.Patient { p := patient("x", date(2000, 1, 1)); p.Active = "yes"; return p }(),
	}
	for field, p := range cases {
		_, err := s.Put(ctx, p)
		if !patientstore.IsKind(err, patientstore.ErrSchema) {
			t.Fatalf("%s: expected schema error, got %v", field, err)
		}
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing stored, got %d", n)
	}
}

func TestSearchBirthDate_SQLite(t *testing.T) {
	s, _ := newStore(t)
	seed(t, s)
	ctx := context.Background()

	cases := []struct {
		tokens []string
		want   []string
	}{
		{[]string{"ge2005", "lt2015-01-01"}, []string{"b", "c"}},
		{[]string{"eq2010"}, []string{"c"}},
		{[]string{"ne2010"}, []string{"a", "b", "d"}},
		{[]string{"gt2010"}, []string{"d"}},
		{[]string{"sa2010"}, []string{"d"}},
		{[]string{"le2010-06"}, []string{"a", "b", "c"}},
		{[]string{"eb2005-01-01"}, []string{"a"}},
		{[]string{"ap2010-06-15"}, []string{"c"}},
		{[]string{"eq2010-06-15T00:00"}, []string{"c"}},
		{[]string{"EQ2005-01-01T00:00:00Z"}, []string{"b"}},
		{[]string{"", "  "}, []string{"a", "b", "c", "d"}},
		{nil, []string{"a", "b", "c", "d"}},
		{[]string{"gt2015"}, []string{}},
	}
	for _, tc := range cases {
		got, err := s.Search(ctx, tc.tokens)
		if err != nil {
			t.Fatalf("Search %v: %v", tc.tokens, err)
		}
		if !reflect.DeepEqual(families(got), tc.want) {
			t.Fatalf("Search %v: got %v want %v", tc.tokens, families(got), tc.want)
		}
	}
}

func TestSearchRejectsBadFilter_SQLite(t *testing.T) {
	s, _ := newStore(t)
	seed(t, s)
	ctx := context.Background()

	for tokens, kind := range map[string]datefilter.ErrorKind{
		"x2020":     datefilter.ErrTokenTooShort,
		"xx2020":    datefilter.ErrUnknownPrefix,
		"eq2010-13": datefilter.ErrMalformedDate,
	} {
		got, err := s.Search(ctx, []string{"ge2005", tokens})
		if got != nil {
			t.Fatalf("%s: expected no results, got %v", tokens, families(got))
		}
		if !patientstore.IsKind(err, patientstore.ErrQueryRejected) {
			t.Fatalf("%s: expected query_rejected, got %v", tokens, err)
		}
		fe, ok := patientstore.FilterError(err)
		if !ok || fe.Kind != kind || fe.Token != tokens {
			t.Fatalf("%s: unexpected filter error %+v", tokens, fe)
		}
	}
}

func TestSearchPushDownMatchesInProcess_SQLite(t *testing.T) {
	s, _ := newStore(t)
	seed(t, s)
	ctx := context.Background()
	for _, p := range []patientstore.Patient{
		patient("e", time.Date(2010, 6, 15, 10, 30, 15, 0, time.UTC)),
		patient("f", time.Date(2010, 6, 30, 23, 59, 59, 0, time.UTC)),
		patient("g", date(2010, 7, 1)),
		patient("h", time.Date(1969, 12, 31, 23, 59, 59, 500_000_000, time.UTC)),
	} {
		if _, err := s.Put(ctx, p); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	tokenSets := [][]string{
		{"eq2010"}, {"ne2010-06"}, {"gt2010-06-15"}, {"lt2010-06-15T10:30"},
		{"ge2010-06-15T10:30:15"}, {"le2010-06"}, {"le2010-06-15T10:30:15.1234"},
		{"ge2005", "lt2015-01-01"}, {"ne2010", "ne2004"}, {"lt1970"}, {"eq1969-12-31T23:59:59"},
	}
	for _, tokens := range tokenSets {
		pushed, err := s.SearchWithOptions(ctx, tokens, patientstore.SearchOptions{})
		if err != nil {
			t.Fatalf("push-down %v: %v", tokens, err)
		}
		local, err := s.SearchWithOptions(ctx, tokens, patientstore.SearchOptions{InProcess: true})
		if err != nil {
			t.Fatalf("in-process %v: %v", tokens, err)
		}
		if !reflect.DeepEqual(families(pushed.Patients), families(local.Patients)) {
			t.Fatalf("%v: push-down %v != in-process %v", tokens, families(pushed.Patients), families(local.Patients))
		}
	}
}

func TestSearchExplain_SQLite(t *testing.T) {
	s, _ := newStore(t)
	res, err := s.SearchWithOptions(context.Background(), []string{"eq2010"}, patientstore.SearchOptions{Explain: true})
	if err != nil {
		t.Fatalf("SearchWithOptions: %v", err)
	}
	want := sqlite.SQLTemplates.SelectPatients + " WHERE birth_date >= ? AND birth_date < ? ORDER BY seq"
	if res.ExplainSQL != want {
		t.Fatalf("unexpected explain sql:\n%s", res.ExplainSQL)
	}
	if len(res.ExplainSteps) != 1 {
		t.Fatalf("unexpected explain steps: %v", res.ExplainSteps)
	}
}

func TestOpen_SQLite(t *testing.T) {
	s, dbPath := newStore(t)
	seed(t, s)
	ctx := context.Background()

	reopened, err := patientstore.Open(ctx, sqlite.New(dbPath), patientstore.DefaultStoreOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	n, err := reopened.Count(ctx)
	if err != nil || n != 4 {
		t.Fatalf("expected 4 patients, got %d (%v)", n, err)
	}

	_, err = patientstore.Open(ctx, sqlite.New(filepath.Join(t.TempDir(), "empty.db")), patientstore.DefaultStoreOptions())
	if !patientstore.IsKind(err, patientstore.ErrSchema) {
		t.Fatalf("expected schema error opening empty db, got %v", err)
	}
}

func TestMattnDriver_SQLite(t *testing.T) {
	ctx := context.Background()
	a := sqlite.NewWithDriver(filepath.Join(t.TempDir(), "cgo.db"), sqlite.DriverMattn)
	s, err := patientstore.Create(ctx, a, patientstore.DefaultStoreOptions())
	if err != nil {
		t.Skipf("mattn driver unavailable: %v", err)
	}
	defer s.Close()
	seed(t, s)

	got, err := s.Search(ctx, []string{"ge2005", "lt2015-01-01"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(families(got), []string{"b", "c"}) {
		t.Fatalf("unexpected result %v", families(got))
	}
}
