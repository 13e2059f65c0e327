package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mongodb "github.com/psyclinic/clinic-api/internal/infrastructure/db/mongo"
	"github.com/psyclinic/clinic-api/internal/seed"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace patients and appointments with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			ctx := cmd.Context()

			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to seed a production database")
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			fixture, err := seed.Decode(f)
			if err != nil {
				return err
			}

			client, db, err := mongodb.Connect(ctx, mongodb.Config{
				URI:      cfg.Mongo.URI,
				Database: cfg.Mongo.Database,
				Timeout:  cfg.StoreTimeout,
			})
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			if err := mongodb.EnsureIndexes(ctx, db); err != nil {
				return err
			}

			seeder := seed.NewSeeder(mongodb.NewPatientRepository(db), mongodb.NewAppointmentRepository(db), log)
			res, err := seeder.Run(ctx, fixture)
			if err != nil {
				return err
			}

			fmt.Printf("Seeded %d patient(s) and %d appointment(s).\n", res.Patients, res.Appointments)
			return nil
		},
	}
	cmd.Flags().String("file", "data/seed.yaml", "Path to the YAML fixture")
	return cmd
}
