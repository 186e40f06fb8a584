package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nonibytes/patientstore/patientstore"
	"github.com/nonibytes/patientstore/patientstore/datefilter"
)

var _ patientstore.Repository = (*Repository)(nil)

// Repository stores patients through GORM. It offers the same operations
// as patientstore.Store for databases reached through a GORM dialect.
type Repository struct {
	db   *gorm.DB
	opts patientstore.StoreOptions
	log  *zap.Logger
}

func New(db *gorm.DB, opts patientstore.StoreOptions) *Repository {
	def := patientstore.DefaultStoreOptions()
	if opts.Now == nil {
		opts.Now = def.Now
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	return &Repository{db: db, opts: opts, log: opts.Logger.With(zap.String("backend", "gorm"))}
}

// AutoMigrate creates or updates the patients table.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&patientRecord{}); err != nil {
		return patientstore.Wrap(patientstore.ErrSQL, "auto migrate", err)
	}
	return nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return patientstore.Wrap(patientstore.ErrIO, "underlying db", err)
	}
	if err := sqlDB.Close(); err != nil {
		return patientstore.Wrap(patientstore.ErrIO, "close database", err)
	}
	return nil
}

func (r *Repository) nowMS() int64 { return r.opts.Now().UnixMilli() }

func (r *Repository) Put(ctx context.Context, p patientstore.Patient) (patientstore.Patient, error) {
	if err := p.Validate(); err != nil {
		return patientstore.Patient{}, err
	}
	p = p.Normalized()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.nowMS()
	p.Meta = patientstore.RecordMeta{CreatedAtMS: now, UpdatedAtMS: now}

	rec, err := toRecord(p)
	if err != nil {
		return patientstore.Patient{}, err
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return patientstore.Patient{}, patientstore.Wrap(patientstore.ErrSQL, "put patient", err)
	}
	return p, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (patientstore.Patient, error) {
	rec, err := r.first(r.db.WithContext(ctx), id.String())
	if err != nil {
		return patientstore.Patient{}, err
	}
	return rec.toPatient()
}

func (r *Repository) first(tx *gorm.DB, id string) (patientRecord, error) {
	var rec patientRecord
	err := tx.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return patientRecord{}, patientstore.NotFoundError(id)
	}
	if err != nil {
		return patientRecord{}, patientstore.Wrap(patientstore.ErrSQL, "get patient", err)
	}
	return rec, nil
}

func (r *Repository) Update(ctx context.Context, p patientstore.Patient) (patientstore.Patient, error) {
	if p.ID == uuid.Nil {
		return patientstore.Patient{}, patientstore.FieldError("id", "id is required")
	}
	if err := p.Validate(); err != nil {
		return patientstore.Patient{}, err
	}
	p = p.Normalized()
	p.Meta.UpdatedAtMS = r.nowMS()

	rec, err := toRecord(p)
	if err != nil {
		return patientstore.Patient{}, err
	}

	var stored patientRecord
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&patientRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
			"name_use":   rec.Use,
			"family":     rec.Family,
			"given_json": rec.GivenJSON,
			"gender":     rec.Gender,
			"birth_date": rec.BirthDate,
			"active":     rec.Active,
			"updated_at": rec.UpdatedAtMS,
		})
		if res.Error != nil {
			return patientstore.Wrap(patientstore.ErrSQL, "update patient", res.Error)
		}
		if res.RowsAffected == 0 {
			return patientstore.NotFoundError(rec.ID)
		}
		got, ferr := r.first(tx, rec.ID)
		if ferr != nil {
			return ferr
		}
		stored = got
		return nil
	})
	if err != nil {
		return patientstore.Patient{}, err
	}
	return stored.toPatient()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&patientRecord{})
	if res.Error != nil {
		return false, patientstore.Wrap(patientstore.ErrSQL, "delete patient", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&patientRecord{}).Count(&n).Error; err != nil {
		return 0, patientstore.Wrap(patientstore.ErrSQL, "count", err)
	}
	return int(n), nil
}

func (r *Repository) Search(ctx context.Context, birthDate []string) ([]patientstore.Patient, error) {
	res, err := r.SearchWithOptions(ctx, birthDate, patientstore.SearchOptions{})
	if err != nil {
		return nil, err
	}
	return res.Patients, nil
}

func (r *Repository) SearchWithOptions(ctx context.Context, birthDate []string, sopts patientstore.SearchOptions) (patientstore.SearchResult, error) {
	filter, err := datefilter.Compile(birthDate)
	if err != nil {
		return patientstore.SearchResult{}, patientstore.QueryRejectedError(err)
	}
	expr := filter.Expr()
	if sopts.InProcess {
		expr = datefilter.All{}
	}
	scope, steps, err := DateScope("birth_date", expr)
	if err != nil {
		return patientstore.SearchResult{}, patientstore.Wrap(patientstore.ErrSQL, "compile filter", err)
	}

	query := func(tx *gorm.DB) *gorm.DB {
		var recs []patientRecord
		return tx.Scopes(scope).Order("seq").Find(&recs)
	}

	var recs []patientRecord
	if err := r.db.WithContext(ctx).Scopes(scope).Order("seq").Find(&recs).Error; err != nil {
		return patientstore.SearchResult{}, patientstore.Wrap(patientstore.ErrSQL, "search", err)
	}

	patients := make([]patientstore.Patient, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.toPatient()
		if err != nil {
			return patientstore.SearchResult{}, err
		}
		patients = append(patients, p)
	}
	if sopts.InProcess {
		patients = datefilter.Select(filter, patients, func(p patientstore.Patient) time.Time { return p.BirthDate })
	}

	out := patientstore.SearchResult{Patients: patients}
	if sopts.Explain {
		out.ExplainSQL = r.db.ToSQL(query)
		out.ExplainSteps = steps
	}
	r.log.Debug("search",
		zap.Strings("birthDate", birthDate),
		zap.String("filter", datefilter.Describe(filter.Expr())),
		zap.Int("matched", len(patients)),
	)
	return out, nil
}
