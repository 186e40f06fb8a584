package gormstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nonibytes/patientstore/patientstore"
)

// patientRecord maps a patient to the patients table. Birth dates are
// truncated to ColumnResolution before writing. Timestamps are kept
// in milliseconds under non-conventional field names so GORM does not
// manage them.
type patientRecord struct {
	Seq         uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string    `gorm:"column:id;size:36;uniqueIndex;not null"`
	Use         string    `gorm:"column:name_use;size:64;not null"`
	Family      string    `gorm:"column:family;size:255;not null"`
	GivenJSON   string    `gorm:"column:given_json;type:text;not null"`
	Gender      string    `gorm:"column:gender;size:16;not null"`
	BirthDate   time.Time `gorm:"column:birth_date;precision:3;index;not null"`
	Active      bool      `gorm:"column:active;not null"`
	CreatedAtMS int64     `gorm:"column:created_at;not null"`
	UpdatedAtMS int64     `gorm:"column:updated_at;not null"`
}

func (patientRecord) TableName() string { return "patients" }

func toRecord(p patientstore.Patient) (patientRecord, error) {
	given, err := json.Marshal(p.Name.Given)
	if err != nil {
		return patientRecord{}, patientstore.Wrap(patientstore.ErrSchema, "encode given names", err)
	}
	return patientRecord{
		ID:          p.ID.String(),
		Use:         p.Name.Use,
		Family:      p.Name.Family,
		GivenJSON:   string(given),
		Gender:      string(p.Gender),
		BirthDate:   p.BirthDate.UTC().Truncate(ColumnResolution),
		Active:      p.Active.Bool(),
		CreatedAtMS: p.Meta.CreatedAtMS,
		UpdatedAtMS: p.Meta.UpdatedAtMS,
	}, nil
}

func (r patientRecord) toPatient() (patientstore.Patient, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return patientstore.Patient{}, patientstore.Wrap(patientstore.ErrSchema, "stored patient id", err)
	}
	given := []string{}
	if r.GivenJSON != "" {
		if err := json.Unmarshal([]byte(r.GivenJSON), &given); err != nil {
			return patientstore.Patient{}, patientstore.Wrap(patientstore.ErrSchema, "stored given names", err)
		}
	}
	return patientstore.Patient{
		ID:        id,
		Name:      patientstore.HumanName{Use: r.Use, Family: r.Family, Given: given},
		Gender:    patientstore.Gender(r.Gender),
		BirthDate: r.BirthDate.UTC(),
		Active:    patientstore.ActiveFromBool(r.Active),
		Meta:      patientstore.RecordMeta{CreatedAtMS: r.CreatedAtMS, UpdatedAtMS: r.UpdatedAtMS},
	}, nil
}
