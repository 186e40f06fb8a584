package patientstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nonibytes/patientstore/patientstore/ops"
)

func toRow(p Patient) (ops.PatientRow, error) {
	given, err := json.Marshal(p.Name.Given)
	if err != nil {
		return ops.PatientRow{}, Wrap(ErrSchema, "encode given names", err)
	}
	return ops.PatientRow{
		ID:          p.ID.String(),
		Use:         p.Name.Use,
		Family:      p.Name.Family,
		GivenJSON:   string(given),
		Gender:      string(p.Gender),
		BirthDateMS: p.BirthDate.UnixMilli(),
		Active:      p.Active.Bool(),
		CreatedAt:   p.Meta.CreatedAtMS,
		UpdatedAt:   p.Meta.UpdatedAtMS,
	}, nil
}

func fromRow(r ops.PatientRow) (Patient, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return Patient{}, Wrap(ErrSchema, "stored patient id", err)
	}
	var given []string
	if r.GivenJSON != "" {
		if err := json.Unmarshal([]byte(r.GivenJSON), &given); err != nil {
			return Patient{}, Wrap(ErrSchema, "stored given names", err)
		}
	}
	if given == nil {
		given = []string{}
	}
	return Patient{
		ID: id,
		Name: HumanName{
			Use:    r.Use,
			Family: r.Family,
			Given:  given,
		},
		Gender:    Gender(r.Gender),
		BirthDate: time.UnixMilli(r.BirthDateMS).UTC(),
		Active:    ActiveFromBool(r.Active),
		Meta: RecordMeta{
			CreatedAtMS: r.CreatedAt,
			UpdatedAtMS: r.UpdatedAt,
		},
	}, nil
}

func fromRows(rows []ops.PatientRow) ([]Patient, error) {
	out := make([]Patient, 0, len(rows))
	for _, r := range rows {
		p, err := fromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
