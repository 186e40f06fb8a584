package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/cliopt"
	"github.com/nonibytes/patientstore/internal/config"
	"github.com/nonibytes/patientstore/internal/logging"
)

// app is the state shared by subcommands once the root has loaded the
// configuration.
type app struct {
	g   cliopt.GlobalOptions
	cfg *config.Config
	log *zap.Logger
}

func (a *app) loggingConfig() logging.Config {
	l := a.cfg.Logging
	return logging.Config{
		Level:  l.Level,
		Format: l.Format,
		Output: l.Output,
		File: logging.FileConfig{
			Dir:      l.File.Dir,
			Filename: l.File.Filename,
			Rotate:   l.File.Rotate,
			MaxSize:  l.File.MaxSize,
			MaxAge:   l.File.MaxAge,
			Compress: l.File.Compress,
		},
	}
}

// NewRootCommand builds the patientstore command tree writing to out/errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{g: cliopt.DefaultGlobalOptions()}

	root := &cobra.Command{
		Use:   "patientstore",
		Short: "Patient record service with birth date search filters",
		Long: `patientstore stores patient records and answers searches such as
birthDate=ge2005&birthDate=lt2011 over sqlite, postgres or a GORM database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.g.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			log, err := logging.New(a.loggingConfig())
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	cliopt.BindGlobalFlags(root.PersistentFlags(), &a.g)

	root.AddCommand(
		newServeCommand(a),
		newSearchCommand(a),
		newSeedCommand(a),
		newMigrateCommand(a),
	)
	return root
}

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, argv, os.Stdout, os.Stderr)
}

func run(ctx context.Context, argv []string, out, errOut io.Writer) int {
	root := NewRootCommand(out, errOut)
	root.SetArgs(argv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}
