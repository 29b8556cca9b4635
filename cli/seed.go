package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"bookminder/models"
	"bookminder/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SeedFile is the layout read by the seed command.
type SeedFile struct {
	Categories []models.Category `json:"categories"`
	Books      []models.Book     `json:"books"`
}

type SeedReport struct {
	Categories int
	Books      int
	Skipped    int
}

func newSeedCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Import categories and books from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := openApp(cmd.Context(), rt)
			if err != nil {
				return err
			}
			defer a.Close()
			if rt.cfg.AutoMigrate {
				if err := a.Migrate(cmd.Context()); err != nil {
					return err
				}
			}

			catalog := services.NewCatalog(a.Catalog, rt.logger.Named("seed"))
			rep, err := Seed(cmd.Context(), catalog, f, rt.logger)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d categories, %d books (%d already present)\n",
				rep.Categories, rep.Books, rep.Skipped)
			return err
		},
	}
}

// Seed inserts everything in r. Entries whose name is already taken are
// skipped, so running it twice is harmless.
func Seed(ctx context.Context, catalog *services.Catalog, r io.Reader, logger *zap.Logger) (SeedReport, error) {
	var in SeedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return SeedReport{}, fmt.Errorf("decode seed file: %w", err)
	}

	var rep SeedReport
	for i := range in.Categories {
		c := in.Categories[i]
		c.ID = ""
		err := catalog.CreateCategory(ctx, &c)
		switch {
		case errors.Is(err, models.ErrDuplicateName):
			rep.Skipped++
			logger.Debug("category exists", zap.String("name", c.Name))
		case err != nil:
			return rep, fmt.Errorf("category %q: %w", c.Name, err)
		default:
			rep.Categories++
		}
	}
	for i := range in.Books {
		b := in.Books[i]
		b.ID = ""
		_, err := catalog.CreateBook(ctx, &b)
		switch {
		case errors.Is(err, models.ErrDuplicateName):
			rep.Skipped++
			logger.Debug("book exists", zap.String("name", b.Name))
		case err != nil:
			return rep, fmt.Errorf("book %q: %w", b.Name, err)
		default:
			rep.Books++
		}
	}
	return rep, nil
}
