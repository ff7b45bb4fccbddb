package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fieldmark/internal/app"
	"fieldmark/internal/config"
	"fieldmark/internal/export"
	"fieldmark/internal/field"
	"fieldmark/internal/location"
	"fieldmark/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer Close.
// operation identifies the CLI command being run (e.g. "Mark", "Export").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// notify is the single user-facing notification channel: severity-tagged
// messages on stderr.
func notify(severity, msg string) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", severity, msg)
}

var rootCmd = &cobra.Command{
	Use:   "fieldmark",
	Short: "Field data collection: GPS waypoints with attribution and export",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Storage:    %s (%s)\n", cfg.Storage.Type, cfg.Storage.DataDir)
		fmt.Printf("Location:   %s\n", cfg.Location.Type)
		fmt.Printf("Export Dir: %s\n", cfg.Export.Dir)
		fmt.Printf("Share:      %s\n", cfg.Share.Type)
		return nil
	},
}

// keys command

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an export encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("KeysInit")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		if err := a.Encryptor().Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		notify("success", "export encryption keys generated")
		return nil
	},
}

// mark command

var markCmd = &cobra.Command{
	Use:   "mark [category]",
	Short: "Record a point at the current position",
	Long: "Records a point of the given category (exploitation, clearing, boundary) " +
		"at the latest GPS fix, attributed to today's collector. Without an argument " +
		"the active category is used.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Mark")
		if err != nil {
			return err
		}
		defer a.Close()

		prompter := newTerminalPrompter()

		var point model.Point
		var markErr error
		if len(args) == 1 {
			category, err := model.ParseCategory(args[0])
			if err != nil {
				return err
			}
			point, markErr = a.Service().Mark(cmd.Context(), category, prompter)
		} else {
			point, markErr = a.Service().MarkActive(cmd.Context(), prompter)
		}

		switch {
		case markErr == nil:
		case errors.Is(markErr, field.ErrNoFix):
			notify("warning", "no usable GPS position; point not created")
			return nil
		case errors.Is(markErr, field.ErrPromptCancelled):
			notify("info", "cancelled; point not created")
			return nil
		case errors.Is(markErr, field.ErrStorage):
			notify("warning", "point recorded but not saved durably; storage is degraded")
		default:
			return markErr
		}

		fmt.Printf("%s %d recorded at (%.6f, %.6f) by %s\n",
			point.Category, point.SequenceNumber, point.Latitude, point.Longitude, point.RecordedBy)
		return nil
	},
}

// points command

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List and edit recorded points",
}

var pointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List points by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PointsList")
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.View()
		if err != nil {
			return err
		}

		for _, layer := range view.Layers {
			fmt.Printf("%s (%d)%s\n", layer.Label, view.Counts[layer.Category], hiddenSuffix(layer.Visible))
			for _, m := range layer.Markers {
				fmt.Printf("  %-20s %10.6f %11.6f  ±%.0fm", m.Label, m.Latitude, m.Longitude, m.AccuracyMeters)
				if m.Notes != "" {
					fmt.Printf("  %s", m.Notes)
				}
				fmt.Printf("  [%s]\n", m.ID)
			}
		}
		fmt.Printf("Total: %d\n", view.Total)
		return nil
	},
}

func hiddenSuffix(visible bool) string {
	if visible {
		return ""
	}
	return " [hidden]"
}

var pointsDeleteCmd = &cobra.Command{
	Use:   "delete <category> <id>",
	Short: "Delete a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := model.ParseCategory(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("PointsDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.Service().DeletePoint(args[1], category)
		if err != nil {
			if errors.Is(err, field.ErrStorage) {
				notify("warning", "point removed but storage is degraded")
				return nil
			}
			return err
		}
		if !removed {
			notify("info", "no such point")
			return nil
		}
		notify("success", "point deleted")
		return nil
	},
}

var pointsNotesCmd = &cobra.Command{
	Use:   "notes <category> <id> <text...>",
	Short: "Set a point's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := model.ParseCategory(args[0])
		if err != nil {
			return err
		}
		notes := strings.Join(args[2:], " ")

		a, err := newApp("PointsNotes")
		if err != nil {
			return err
		}
		defer a.Close()

		found, err := a.Service().UpdateNotes(args[1], category, notes)
		if err != nil {
			if errors.Is(err, field.ErrStorage) {
				notify("warning", "notes updated but storage is degraded")
				return nil
			}
			return err
		}
		if !found {
			notify("info", "no such point")
			return nil
		}
		notify("success", "notes updated")
		return nil
	},
}

// category command

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage the active category and visibility",
}

var categoryUseCmd = &cobra.Command{
	Use:   "use <category>",
	Short: "Select the category the next mark uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := model.ParseCategory(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("CategoryUse")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Store().SetActiveCategory(category); err != nil {
			return err
		}
		notify("success", fmt.Sprintf("active category: %s", category))
		return nil
	},
}

func newVisibilityCmd(use, short string, visible bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <category>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := model.ParseCategory(args[0])
			if err != nil {
				return err
			}

			a, err := newApp("CategoryVisibility")
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Service().Store().SetVisible(category, visible)
		},
	}
}

// export command

var exportCategories string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export points (csv, gpx, json, geojson)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}

		var include []model.Category
		if exportCategories != "" {
			for _, raw := range strings.Split(exportCategories, ",") {
				category, err := model.ParseCategory(strings.TrimSpace(raw))
				if err != nil {
					return err
				}
				include = append(include, category)
			}
		}

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.Export(cmd.Context(), format, include)
		if err != nil {
			if errors.Is(err, field.ErrNothingToExport) {
				notify("info", "nothing to export")
				return nil
			}
			notify("error", fmt.Sprintf("export failed: %v", err))
			return err
		}

		notify("success", fmt.Sprintf("exported via %s: %s", outcome.Sink, outcome.Destination))
		return nil
	},
}

// import command

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore points from a generic JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if strings.HasSuffix(args[0], ".age") {
			passphrase, err = readPassphrase("Passphrase for private key: ")
			if err != nil {
				return err
			}
		}

		count, err := a.Import(args[0], passphrase)
		if err != nil {
			return err
		}
		notify("success", fmt.Sprintf("restored %d points", count))
		return nil
	},
}

// clear command

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all points and reset numbering",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Clear")
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.Service().ClearAll(cmd.Context(), newTerminalPrompter())
		switch {
		case err == nil:
			notify("success", "all points deleted")
		case errors.Is(err, field.ErrNothingToClear):
			notify("info", "no points to delete")
		case errors.Is(err, field.ErrNotConfirmed):
			notify("info", "cancelled")
		default:
			return err
		}
		return nil
	},
}

// identity commands

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show or set today's collector name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			name, err := a.Service().RecordNameForToday(args[0])
			if err != nil {
				return err
			}
			notify("success", fmt.Sprintf("collecting as %s", name))
			return nil
		}

		session, ok, err := a.Service().SessionToday()
		if err != nil {
			return err
		}
		if !ok {
			notify("info", "no collector name recorded today")
			return nil
		}
		fmt.Println(session.DisplayName)
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show today's collection session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Session")
		if err != nil {
			return err
		}
		defer a.Close()

		session, ok, err := a.Service().SessionToday()
		if err != nil {
			return err
		}
		if !ok {
			notify("info", "no session today")
			return nil
		}

		fmt.Printf("Day:           %s\n", session.DayKey)
		fmt.Printf("Collector:     %s\n", session.DisplayName)
		fmt.Printf("Points:        %d\n", session.PointCount)
		fmt.Printf("Last activity: %s\n", time.UnixMilli(session.LastActivity).Format("15:04:05"))
		return nil
	},
}

// prefs commands

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Presentation preferences",
}

var prefsLangCmd = &cobra.Command{
	Use:   "lang [tag]",
	Short: "Show or set the export language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PrefsLang")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			return a.Prefs().SetLanguage(args[0])
		}
		lang, err := a.Prefs().Language()
		if err != nil {
			return err
		}
		fmt.Println(lang)
		return nil
	},
}

var prefsBasemapCmd = &cobra.Command{
	Use:   "basemap [style]",
	Short: "Show or set the base map style",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PrefsBasemap")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			return a.Prefs().SetBasemap(args[0])
		}
		style, err := a.Prefs().Basemap()
		if err != nil {
			return err
		}
		fmt.Println(style)
		return nil
	},
}

// watch command

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print position fixes as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return err
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return err
		}

		source, err := location.NewSourceFromConfig(cfg.Location, field.RealClock{})
		if err != nil {
			return err
		}

		interval := time.Duration(cfg.Location.MinIntervalMillis) * time.Millisecond
		if interval <= 0 {
			interval = time.Second
		}

		feed := location.NewFeed(source, interval)
		for fix := range feed.Watch(cmd.Context()) {
			fmt.Printf("%s  %10.6f %11.6f  ±%.0fm\n",
				time.UnixMilli(fix.CapturedAt).Format("15:04:05"),
				fix.Latitude, fix.Longitude, fix.AccuracyMeters)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configListCmd)
	keysCmd.AddCommand(keysInitCmd)
	pointsCmd.AddCommand(pointsListCmd, pointsDeleteCmd, pointsNotesCmd)
	categoryCmd.AddCommand(
		categoryUseCmd,
		newVisibilityCmd("show", "Show a category on the map", true),
		newVisibilityCmd("hide", "Hide a category from the map", false),
	)
	exportCmd.Flags().StringVar(&exportCategories, "categories", "", "comma-separated categories to include (default all)")
	prefsCmd.AddCommand(prefsLangCmd, prefsBasemapCmd)

	rootCmd.AddCommand(
		configCmd, keysCmd, markCmd, pointsCmd, categoryCmd,
		exportCmd, importCmd, clearCmd, whoamiCmd, sessionCmd,
		prefsCmd, watchCmd,
	)
}
