package patientstore

const (
	DefaultSQLitePath     = "patients.db"
	DefaultPostgresSchema = "patientstore"
)
