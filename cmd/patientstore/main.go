// Command patientstore serves and searches patient records.
//
//	patientstore migrate --sqlite-path patients.db
//	patientstore serve --config patientstore.yaml
//	patientstore seed --count 100 --url http://localhost:8080/api/patient
//	patientstore search --birth-date ge2005 --birth-date lt2011
package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/nonibytes/patientstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
