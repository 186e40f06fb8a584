package sqlite

import "github.com/nonibytes/patientstore/patientstore/storage"

const columns = "id, name_use, family, given_json, gender, birth_date, active, created_at, updated_at"

var SQLTemplates = storage.SQL{
	GetMeta: "SELECT value FROM meta WHERE key = ?1",
	SetMeta: "INSERT INTO meta(key,value) VALUES(?1,?2) ON CONFLICT(key) DO UPDATE SET value=excluded.value",

	InsertPatient: `INSERT INTO patients(id, name_use, family, given_json, gender, birth_date, active, created_at, updated_at)
		VALUES(?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9)`,
	UpdatePatient: `UPDATE patients
		SET name_use=?2, family=?3, given_json=?4, gender=?5, birth_date=?6, active=?7, updated_at=?8
		WHERE id = ?1`,
	GetPatient:    "SELECT " + columns + " FROM patients WHERE id = ?1",
	DeletePatient: "DELETE FROM patients WHERE id = ?1",
	CountPatients: "SELECT COUNT(*) FROM patients",

	SelectPatients: "SELECT " + columns + " FROM patients",
	OrderBy:        " ORDER BY seq",
}
