package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/straye-as/earsip/internal/domain"
	"golang.org/x/sync/errgroup"
)

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List letter categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := c.svc.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				desc := ""
				if cat.Description != nil {
					desc = *cat.Description
				}
				rows = append(rows, []string{strconv.FormatInt(cat.ID, 10), cat.Name, desc})
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "NAMA", "KETERANGAN"}, rows)
		},
	}
}

// dashboardView is the combined output of the dashboard command
type dashboardView struct {
	Metrics    *domain.DashboardMetrics `json:"metrics"`
	Categories int                      `json:"categories"`
}

func newDashboardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show archive totals and the monthly chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var view dashboardView
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				m, err := c.svc.Dashboard.Metrics(ctx)
				view.Metrics = m
				return err
			})
			g.Go(func() error {
				categories, err := c.svc.Categories.List(ctx)
				view.Categories = len(categories)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			out := cmd.OutOrStdout()
			m := view.Metrics
			fmt.Fprintf(out, "Surat masuk:  %d (%d bulan ini)\n", m.TotalIncoming, m.IncomingThisMonth)
			fmt.Fprintf(out, "Surat keluar: %d (%d bulan ini)\n", m.TotalOutgoing, m.OutgoingThisMonth)
			fmt.Fprintf(out, "Kategori:     %d\n\n", view.Categories)
			rows := make([][]string, 0, len(m.Chart))
			for _, p := range m.Chart {
				rows = append(rows, []string{p.Date, strconv.Itoa(p.IncomingCount), strconv.Itoa(p.OutgoingCount)})
			}
			return writeTable(out, []string{"PERIODE", "MASUK", "KELUAR"}, rows)
		},
	}
}

func newReportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Report summaries and PDF exports"}

	var filter domain.ReportFilter
	addFilterFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&filter.Entity, "entity", "", "all, incoming or outgoing")
		cmd.Flags().StringVar(&filter.Period, "period", "", "monthly or yearly")
		cmd.Flags().IntVar(&filter.Month, "month", 0, "month 1-12")
		cmd.Flags().IntVar(&filter.Year, "year", 0, "year")
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show the report narrative and chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.svc.Reports.Summary(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Summary)
			fmt.Fprintln(out)
			rows := make([][]string, 0, len(s.Chart))
			for _, p := range s.Chart {
				rows = append(rows, []string{p.Date, strconv.Itoa(p.IncomingCount), strconv.Itoa(p.OutgoingCount)})
			}
			return writeTable(out, []string{"PERIODE", "MASUK", "KELUAR"}, rows)
		},
	}
	addFilterFlags(summary)

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Download the report document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.svc.Reports.Export(cmd.Context(), filter)
			if err != nil {
				return err
			}
			dest := output
			if dest == "" {
				dest = file.Filename
			} else if info, err := os.Stat(dest); err == nil && info.IsDir() {
				dest = filepath.Join(dest, file.Filename)
			}
			if err := os.WriteFile(dest, file.Data, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", dest, len(file.Data))
			return nil
		},
	}
	addFilterFlags(export)
	export.Flags().StringVarP(&output, "output", "o", "", "file or directory to write (default: the report filename)")

	cmd.AddCommand(summary, export)
	return cmd
}
