package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nonibytes/patientstore/internal/api"
	"github.com/nonibytes/patientstore/patientstore"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		birthDate []string
		format    string
		explain   bool
		inProcess bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search patients by birth date",
		Long: `Search the configured store. Every --birth-date token must hold, e.g.

  patientstore search --birth-date ge2005 --birth-date lt2011-06`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := OpenRepository(cmd.Context(), a.cfg.Storage, a.log, false)
			if err != nil {
				return err
			}
			defer repo.Close()

			start := time.Now()
			res, err := repo.SearchWithOptions(cmd.Context(), birthDate, patientstore.SearchOptions{
				Explain:   explain,
				InProcess: inProcess,
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			switch ParseOutputFormat(format) {
			case FormatJSON:
				PrintJSON(out, api.PatientDTOs(res.Patients))
			default:
				fmt.Fprintf(out, "Found %d patients in %dms\n", len(res.Patients), elapsed.Milliseconds())
				printPatients(out, res.Patients)
				if len(res.ExplainSteps) > 0 {
					fmt.Fprintln(out, "\nExplanation:")
					for _, s := range res.ExplainSteps {
						fmt.Fprintf(out, "  %s\n", s)
					}
				}
				if res.ExplainSQL != "" {
					fmt.Fprintf(out, "\nQuery:\n%s\n", res.ExplainSQL)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&birthDate, "birth-date", "b", nil, "birth date filter token, repeatable (e.g. ge2005)")
	cmd.Flags().StringVar(&format, "format", "pretty", "format: pretty|json")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the SQL and plan steps")
	cmd.Flags().BoolVar(&inProcess, "in-process", false, "filter in memory instead of in the database")
	return cmd
}
