package patientstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/patientstore/datefilter"
	"github.com/nonibytes/patientstore/patientstore/ops"
	"github.com/nonibytes/patientstore/patientstore/storage"
)

var _ Repository = (*Store)(nil)

// Store is an open patient store
type Store struct {
	adapter storage.Adapter
	db      *sql.DB
	opts    StoreOptions
	log     *zap.Logger
}

// Create creates the store tables if needed and opens the store
func Create(ctx context.Context, adapter storage.Adapter, opts StoreOptions) (*Store, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.CreateStore(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSQL, "create store", err)
	}
	return newStore(adapter, db, opts), nil
}

// Open opens an existing store
func Open(ctx context.Context, adapter storage.Adapter, opts StoreOptions) (*Store, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.OpenStore(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSchema, "open store", err)
	}
	return newStore(adapter, db, opts), nil
}

func newStore(adapter storage.Adapter, db *sql.DB, opts StoreOptions) *Store {
	if opts.Now == nil {
		opts.Now = DefaultStoreOptions().Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		adapter: adapter,
		db:      db,
		opts:    opts,
		log: opts.Logger.With(
			zap.String("backend", string(adapter.Backend())),
			zap.String("store", adapter.StoreID()),
		),
	}
}

// Close closes the store
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return Wrap(ErrIO, "close database", err)
		}
	}
	return s.adapter.Close()
}

func (s *Store) nowMS() int64 {
	return s.opts.Now().UnixMilli()
}

// Put stores a new patient. A nil ID is replaced with a fresh random one.
// The stored record is returned.
func (s *Store) Put(ctx context.Context, p Patient) (Patient, error) {
	if err := p.Validate(); err != nil {
		return Patient{}, err
	}
	p = p.Normalized()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.nowMS()
	p.Meta = RecordMeta{CreatedAtMS: now, UpdatedAtMS: now}

	row, err := toRow(p)
	if err != nil {
		return Patient{}, err
	}
	if err := ops.InsertPatient(ctx, s.db, s.adapter.SQL(), row); err != nil {
		return Patient{}, Wrap(ErrSQL, "put patient", err)
	}
	s.log.Debug("patient stored", zap.String("id", row.ID))
	return p, nil
}

// Get retrieves a patient by id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Patient, error) {
	row, err := ops.GetPatient(ctx, s.db, s.adapter.SQL(), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return Patient{}, NotFoundError(id.String())
	}
	if err != nil {
		return Patient{}, Wrap(ErrSQL, "get patient", err)
	}
	return fromRow(row)
}

// Update replaces the stored fields of p.ID. Creation time is kept.
func (s *Store) Update(ctx context.Context, p Patient) (Patient, error) {
	if p.ID == uuid.Nil {
		return Patient{}, FieldError("id", "id is required")
	}
	if err := p.Validate(); err != nil {
		return Patient{}, err
	}
	p = p.Normalized()
	p.Meta.UpdatedAtMS = s.nowMS()

	row, err := toRow(p)
	if err != nil {
		return Patient{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Patient{}, Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	sqlt := s.adapter.SQL()
	found, err := ops.UpdatePatient(ctx, tx, sqlt, row)
	if err != nil {
		return Patient{}, Wrap(ErrSQL, "update patient", err)
	}
	if !found {
		return Patient{}, NotFoundError(row.ID)
	}
	stored, err := ops.GetPatient(ctx, tx, sqlt, row.ID)
	if err != nil {
		return Patient{}, Wrap(ErrSQL, "reload patient", err)
	}
	if err := tx.Commit(); err != nil {
		return Patient{}, Wrap(ErrSQL, "commit", err)
	}
	return fromRow(stored)
}

// Delete removes a patient by id, returns true if it was found and deleted
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := ops.DeletePatient(ctx, s.db, s.adapter.SQL(), id.String())
	if err != nil {
		return false, Wrap(ErrSQL, "delete patient", err)
	}
	return ok, nil
}

// Count returns the number of stored patients
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := ops.CountPatients(ctx, s.db, s.adapter.SQL())
	if err != nil {
		return 0, Wrap(ErrSQL, "count", err)
	}
	return n, nil
}

// Search returns the patients whose birth date satisfies every token, in
// insertion order. Blank tokens are ignored; no tokens returns everyone.
func (s *Store) Search(ctx context.Context, birthDate []string) ([]Patient, error) {
	res, err := s.SearchWithOptions(ctx, birthDate, SearchOptions{})
	if err != nil {
		return nil, err
	}
	return res.Patients, nil
}

func (s *Store) SearchWithOptions(ctx context.Context, birthDate []string, sopts SearchOptions) (SearchResult, error) {
	filter, err := datefilter.Compile(birthDate)
	if err != nil {
		return SearchResult{}, QueryRejectedError(err)
	}

	expr := filter.Expr()
	if sopts.InProcess {
		expr = datefilter.All{}
	}
	res, err := ops.Search(ctx, s.db, s.adapter, expr, ops.SearchOptions{Explain: sopts.Explain})
	if err != nil {
		return SearchResult{}, Wrap(ErrSQL, "search", err)
	}

	patients, err := fromRows(res.Rows)
	if err != nil {
		return SearchResult{}, err
	}
	if sopts.InProcess {
		patients = datefilter.Select(filter, patients, birthDateOf)
	}

	s.log.Debug("search",
		zap.Strings("birthDate", birthDate),
		zap.String("filter", datefilter.Describe(filter.Expr())),
		zap.Bool("inProcess", sopts.InProcess),
		zap.Int("matched", len(patients)),
	)
	return SearchResult{
		Patients:     patients,
		ExplainSQL:   res.ExplainSQL,
		ExplainSteps: res.ExplainSteps,
	}, nil
}

// Optimize runs the backend's maintenance routine
func (s *Store) Optimize(ctx context.Context) error {
	return s.adapter.Optimize(ctx, s.db)
}

func birthDateOf(p Patient) time.Time { return p.BirthDate }
