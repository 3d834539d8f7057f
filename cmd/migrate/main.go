// Command migrate áp dụng schema PostgreSQL đã nhúng sẵn.
//
//	migrate up
//	migrate down --steps 1
//	migrate version
//	migrate force --version 1
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/vnkhanh/questionnaire-server/config"
	"github.com/vnkhanh/questionnaire-server/logger"
	"github.com/vnkhanh/questionnaire-server/migrations"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back (down)")
	version := flag.Int("version", -1, "version to force (force)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [flags] up|down|version|force\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	dbCfg, logCfg := config.LoadDatabase()
	logger.Init(logCfg.Level, logCfg.Format)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), dbCfg, *steps, *version); err != nil {
		log.Fatal().Err(err).Str("command", flag.Arg(0)).Msg("Migration failed")
	}
}

func run(command string, dbCfg config.Database, steps, version int) error {
	db, err := config.OpenDatabase(dbCfg)
	if err != nil {
		return err
	}
	defer config.CloseDatabase(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	m, err := migrations.New(sqlDB)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		if err := migrations.Up(m); err != nil {
			return err
		}
	case "down":
		if err := migrations.Down(m, steps); err != nil {
			return err
		}
	case "force":
		if version < 0 {
			return fmt.Errorf("force requires --version")
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	v, dirty, err := migrations.Version(m)
	if err != nil {
		return err
	}
	log.Info().Uint("version", v).Bool("dirty", dirty).Msg("Schema version")
	return nil
}
