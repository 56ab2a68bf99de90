package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lso-service/api"
	"lso-service/internal/app"
	"lso-service/internal/calendar"
	"lso-service/internal/config"
	"lso-service/internal/export"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "lsoctl",
		Short:         "Altar server schedule administration",
		Long:          "Maintenance commands for the parish altar server schedule.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Config file path")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(occurrencesCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(recalculateCmd())
	rootCmd.AddCommand(groupCmd())
	rootCmd.AddCommand(massTimeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// open loads the config and builds the application. Logs go to stderr so
// command output stays clean.
func open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	return app.New(ctx, cfg, log, nil)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and seed ranks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func occurrencesCmd() *cobra.Command {
	var monthStr string
	var weekday int

	cmd := &cobra.Command{
		Use:   "occurrences",
		Short: "List the dates of a month falling on a weekday",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := calendar.ParseMonth(monthStr)
			if err != nil {
				return err
			}

			dates, err := calendar.Occurrences(m, calendar.Weekday(weekday))
			if err != nil {
				return err
			}

			out := make([]string, len(dates))
			for i, d := range dates {
				out[i] = d.String()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n",
				calendar.Weekday(weekday), export.MonthName(m), strings.Join(out, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthStr, "month", "m", "", "Month (YYYY-MM)")
	cmd.Flags().IntVarP(&weekday, "weekday", "w", 0, "Weekday, 1 = Monday .. 7 = Sunday")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("weekday")

	return cmd
}

func exportCmd() *cobra.Command {
	var monthStr string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the printable weekday schedule of a month as HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := calendar.ParseMonth(monthStr)
			if err != nil {
				return err
			}

			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.Service.ExportWeekday(cmd.Context(), m)
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}

			if err := os.WriteFile(outPath, page, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%d bytes)\n", outPath, len(page))
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthStr, "month", "m", "", "Month (YYYY-MM)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, stdout when empty")
	_ = cmd.MarkFlagRequired("month")

	return cmd
}

func recalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate",
		Short: "Reset points to the sum of supplementary service scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			changed, err := a.Service.RecalculatePoints(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d ministrant(s)\n", changed)
			return nil
		},
	}
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage guilds",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.Service.CreateGroup(cmd.Context(), &api.GroupCreateRequest{Name: args[0]})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added group %d: %s\n", g.ID, g.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List guilds",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.Service.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", g.ID, g.Name)
			}
			return nil
		},
	})

	return cmd
}

func massTimeCmd() *cobra.Command {
	var description string
	var order int

	cmd := &cobra.Command{
		Use:   "mass-time",
		Short: "Manage Sunday Mass hours",
	}

	add := &cobra.Command{
		Use:   "add HH:MM",
		Short: "Add a Sunday Mass hour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			req := &api.MassTimeCreateRequest{StartTime: args[0], DisplayOrder: order}
			if description != "" {
				req.Description = &description
			}

			mt, err := a.Service.CreateMassTime(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added mass time %d: %s\n", mt.ID, mt.StartTime)
			return nil
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	add.Flags().IntVar(&order, "order", 0, "Display order")

	cmd.AddCommand(add)

	return cmd
}
