package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nonibytes/patientstore/patientstore"
	"github.com/nonibytes/patientstore/patientstore/datefilter"
)

// PatientDTO is the wire shape of a patient. The id travels inside name.
type PatientDTO struct {
	Name      *NameDTO  `json:"name"`
	Gender    string    `json:"gender"`
	BirthDate BirthDate `json:"birthDate"`
	Active    Active    `json:"active"`
}

type NameDTO struct {
	ID     uuid.UUID `json:"id"`
	Use    string    `json:"use"`
	Family string    `json:"family"`
	Given  []string  `json:"given"`
}

// BirthDate accepts RFC 3339 or any date the filter engine parses (a
// missing offset is UTC). It is written as RFC 3339 in UTC.
type BirthDate struct{ time.Time }

func (b BirthDate) MarshalJSON() ([]byte, error) {
	if b.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(b.UTC().Format(time.RFC3339Nano))
}

func (b *BirthDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		b.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("birthDate must be a string: %w", err)
	}
	if s == "" {
		b.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		b.Time = t.UTC()
		return nil
	}
	t, err := datefilter.ParseDate(s)
	if err != nil {
		return fmt.Errorf("birthDate: %w", err)
	}
	b.Time = t
	return nil
}

// Active accepts a JSON boolean or a "true"/"false" string and is always
// written as a string.
type Active string

func (a *Active) UnmarshalJSON(data []byte) error {
	if b, err := strconv.ParseBool(string(data)); err == nil {
		*a = Active(strconv.FormatBool(b))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("active must be a boolean or string: %w", err)
	}
	*a = Active(s)
	return nil
}

func NewPatientDTO(p patientstore.Patient) PatientDTO {
	given := p.Name.Given
	if given == nil {
		given = []string{}
	}
	return PatientDTO{
		Name: &NameDTO{
			ID:     p.ID,
			Use:    p.Name.Use,
			Family: p.Name.Family,
			Given:  given,
		},
		Gender:    string(p.Gender),
		BirthDate: BirthDate{p.BirthDate},
		Active:    Active(p.Active),
	}
}

func PatientDTOs(ps []patientstore.Patient) []PatientDTO {
	out := make([]PatientDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPatientDTO(p))
	}
	return out
}

func (d PatientDTO) toPatient() (patientstore.Patient, error) {
	if d.Name == nil {
		return patientstore.Patient{}, patientstore.FieldError("name", "name is required")
	}
	g, err := patientstore.ParseGender(d.Gender)
	if err != nil {
		return patientstore.Patient{}, err
	}
	a, err := patientstore.ParseActive(string(d.Active))
	if err != nil {
		return patientstore.Patient{}, err
	}
	return patientstore.Patient{
		ID: d.Name.ID,
		Name: patientstore.HumanName{
			Use:    d.Name.Use,
			Family: d.Name.Family,
			Given:  d.Name.Given,
		},
		Gender:    g,
		BirthDate: d.BirthDate.Time,
		Active:    a,
	}, nil
}
