package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gosterim-cli/booking"
	"gosterim-cli/service"
)

func newCatalogCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List films and showtimes",
		Long:  `List every bookable showtime of the configured catalog with its price and poster.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			provider := service.NewCatalogProvider(cfg.CatalogURL, cfg.CatalogTTL, nil, nil)
			films, err := provider.Films(ctx)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			selector := booking.NewSelector(films, nil)
			if len(selector.Films()) == 0 {
				return fmt.Errorf("the catalog has no bookable showtimes")
			}
			renderCatalog(cmd.OutOrStdout(), selector.Films())
			return nil
		},
	}
}

func renderCatalog(w io.Writer, films []booking.Film) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Film", "Genre", "Rating", "Time", "Price", "Poster"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true, WidthMax: 24},
		{Number: 2, AutoMerge: true},
		{Number: 3, AutoMerge: true},
		{Number: 6, AutoMerge: true, WidthMax: 48},
	})
	t.Style().Options.SeparateRows = true

	for _, film := range films {
		for _, showtime := range film.Showtimes {
			t.AppendRow(table.Row{
				film.Title,
				film.Genre,
				film.Rating,
				showtime.SessionTime,
				"$" + showtime.Price.StringFixed(2),
				film.Poster,
			}, rowConfigAutoMerge)
		}
	}
	t.Render()
}
