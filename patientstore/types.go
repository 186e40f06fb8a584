package patientstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gender is the administrative gender of a patient
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
)

// Genders lists the accepted values in declaration order.
var Genders = []Gender{GenderUnknown, GenderMale, GenderFemale, GenderOther}

// ParseGender accepts any letter case. Empty input is GenderUnknown.
func ParseGender(s string) (Gender, error) {
	if strings.TrimSpace(s) == "" {
		return GenderUnknown, nil
	}
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Genders {
		if g == known {
			return g, nil
		}
	}
	return "", FieldError("gender", fmt.Sprintf("unknown gender %q", s))
}

// Active says whether the patient record is in active use. It is a string
// enum on the wire ("true"/"false") and a boolean in storage.
type Active string

const (
	ActiveTrue  Active = "true"
	ActiveFalse Active = "false"
)

// ParseActive accepts any letter case. Empty input is ActiveFalse.
func ParseActive(s string) (Active, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return ActiveTrue, nil
	case "false", "":
		return ActiveFalse, nil
	default:
		return "", FieldError("active", fmt.Sprintf("unknown active value %q", s))
	}
}

func ActiveFromBool(b bool) Active {
	if b {
		return ActiveTrue
	}
	return ActiveFalse
}

func (a Active) Bool() bool { return a == ActiveTrue }

// HumanName is a patient's name
type HumanName struct {
	Use    string
	Family string
	Given  []string
}

// RecordMeta holds store-maintained timestamps
type RecordMeta struct {
	CreatedAtMS int64
	UpdatedAtMS int64
}

// Patient is one stored patient record
type Patient struct {
	ID        uuid.UUID
	Name      HumanName
	Gender    Gender
	BirthDate time.Time
	Active    Active
	Meta      RecordMeta
}

// Validate checks required fields and enum values.
func (p Patient) Validate() error {
	if strings.TrimSpace(p.Name.Family) == "" {
		return FieldError("name.family", "family name is required")
	}
	if p.BirthDate.IsZero() {
		return FieldError("birthDate", "birth date is required")
	}
	if _, err := ParseGender(string(p.Gender)); err != nil {
		return err
	}
	if _, err := ParseActive(string(p.Active)); err != nil {
		return err
	}
	return nil
}

// Normalized returns p with enums lower-cased, defaults filled in and the
// birth date truncated to the millisecond the store keeps.
func (p Patient) Normalized() Patient {
	g, _ := ParseGender(string(p.Gender))
	a, _ := ParseActive(string(p.Active))
	p.Gender = g
	p.Active = a
	p.BirthDate = p.BirthDate.UTC().Truncate(time.Millisecond)
	if p.Name.Given == nil {
		p.Name.Given = []string{}
	}
	return p
}

// StoreOptions configures store behavior
type StoreOptions struct {
	Now    func() time.Time
	Logger *zap.Logger
}

// DefaultStoreOptions returns sensible defaults
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Now:    time.Now,
		Logger: zap.NewNop(),
	}
}

// SearchOptions configures a search
type SearchOptions struct {
	// InProcess loads every record and filters in memory instead of
	// pushing the filter down to the database.
	InProcess bool
	Explain   bool
}

// SearchResult is the outcome of a search
type SearchResult struct {
	Patients     []Patient
	ExplainSQL   string
	ExplainSteps []string
}

// Repository is the patient record surface shared by Store and the GORM
// repository.
type Repository interface {
	Put(ctx context.Context, p Patient) (Patient, error)
	Get(ctx context.Context, id uuid.UUID) (Patient, error)
	Update(ctx context.Context, p Patient) (Patient, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
	SearchWithOptions(ctx context.Context, birthDate []string, opts SearchOptions) (SearchResult, error)
	Close() error
}
