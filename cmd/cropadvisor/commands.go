package main

import (
	"fmt"
	"sort"

	"cropadvisor/internal/config"
	"cropadvisor/internal/render"
	"cropadvisor/internal/types"

	"github.com/spf13/cobra"
)

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "cropadvisor",
		Short: "Crop health advisory client",
		Long: `cropadvisor talks to the crop-health advisory backend.

It detects crop diseases from leaf photos, shows market prices and trends,
weather with farming recommendations, and crop-specific farming tips.

The backend is chosen from API_BASE_URL, else API_HOST, else APP_ENV
(local -> API_LOCAL_URL, otherwise API_DEPLOYED_URL).`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.PersistentFlags().StringVar(&c.lang, "lang", "", "language for this invocation only (en, hi, mr, te)")
	root.PersistentFlags().BoolVar(&c.retranslate, "retranslate", false, "re-render shown results when the language changes")

	root.AddCommand(
		newDetectCmd(c),
		newPricesCmd(c),
		newWeatherCmd(c),
		newTipsCmd(c),
		newDashboardCmd(c),
		newLangCmd(c),
		newHealthCmd(c),
		newLanguagesCmd(c),
		newShellCmd(c),
		newVersionCmd(c),
	)
	return root
}

func newDetectCmd(c *cli) *cobra.Command {
	var remedies, tips bool
	cmd := &cobra.Command{
		Use:   "detect [image]",
		Short: "Detect a disease from a leaf image (JPG or PNG, max 16MB)",
		Example: `  cropadvisor detect leaf.jpg
  cropadvisor detect leaf.png --remedies --tips`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell, err := c.newShell(c.cfg.Modules)
			if err != nil {
				return err
			}
			defer shell.Close()

			ctx := cmd.Context()
			if err := shell.Disease.SelectFile(args[0]); err != nil {
				return err
			}
			if err := shell.Disease.Analyze(ctx); err != nil {
				return err
			}
			if remedies {
				if err := shell.Disease.Remedies(ctx); err != nil {
					return err
				}
			}
			if tips {
				if err := shell.Disease.YieldTips(ctx); err != nil {
					return err
				}
			}
			c.printPane(shell, types.TabDisease)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remedies, "remedies", false, "also fetch treatment options")
	cmd.Flags().BoolVar(&tips, "tips", false, "also fetch yield improvement tips")
	return cmd
}

func newPricesCmd(c *cli) *cobra.Command {
	var crop, market string
	var days int
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Show market prices and the recent price trend for a crop",
		RunE: func(cmd *cobra.Command, args []string) error {
			mods := c.cfg.Modules
			if crop != "" {
				mods.DefaultCrop = crop
			}
			if market != "" {
				mods.DefaultMarket = market
			}
			if cmd.Flags().Changed("days") {
				mods.TrendsDays = days
			}
			return c.runTab(cmd, mods, types.TabMarket)
		},
	}
	cmd.Flags().StringVar(&crop, "crop", "", "crop to quote (default from DEFAULT_CROP)")
	cmd.Flags().StringVar(&market, "market", "", "market to quote, or \"all\" (default from DEFAULT_MARKET)")
	cmd.Flags().IntVar(&days, "days", 0, "trend window in days, 0 to skip trends (default from TRENDS_DAYS)")
	return cmd
}

func newWeatherCmd(c *cli) *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show weather, forecast and farming recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			mods := c.cfg.Modules
			if location != "" {
				mods.DefaultLocation = location
			}
			return c.runTab(cmd, mods, types.TabWeather)
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "location (default from DEFAULT_LOCATION)")
	return cmd
}

func newTipsCmd(c *cli) *cobra.Command {
	var crop string
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Show the yield improvement guide and crop calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			mods := c.cfg.Modules
			if crop != "" {
				mods.DefaultCrop = crop
			}
			return c.runTab(cmd, mods, types.TabTips)
		},
	}
	cmd.Flags().StringVar(&crop, "crop", "", "crop (default from DEFAULT_CROP)")
	return cmd
}

// runTab activates one tab with the given selections and prints it.
func (c *cli) runTab(cmd *cobra.Command, mods config.ModulesConfig, tab types.Tab) error {
	shell, err := c.newShell(mods)
	if err != nil {
		return err
	}
	defer shell.Close()

	if err := shell.SwitchTab(cmd.Context(), tab); err != nil {
		return err
	}
	c.printPane(shell, tab)
	return nil
}

func newDashboardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch market, weather and tips concurrently and print every pane",
		RunE: func(cmd *cobra.Command, args []string) error {
			shell, err := c.newShell(c.cfg.Modules)
			if err != nil {
				return err
			}
			defer shell.Close()

			shell.Welcome()
			warmErr := shell.Warmup(cmd.Context())
			for _, tab := range types.Tabs {
				c.printPane(shell, tab)
			}
			return warmErr
		},
	}
}

func newLangCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or change the persisted interface language",
		RunE: func(cmd *cobra.Command, args []string) error {
			shell, err := c.newShell(c.cfg.Modules)
			if err != nil {
				return err
			}
			defer shell.Close()

			lang := shell.Language()
			fmt.Fprintf(c.out, "%s (%s)\n", lang, lang.DisplayName())
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [code]",
			Short: "Persist the interface language",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				shell, err := c.newShell(c.cfg.Modules)
				if err != nil {
					return err
				}
				defer shell.Close()

				if err := shell.SetLanguage(args[0]); err != nil {
					return err
				}
				lang := shell.Language()
				fmt.Fprintln(c.out, shell.Translator().Translatef("language_changed", map[string]string{
					"language": lang.DisplayName(),
				}))
				for _, l := range shell.StaticLabels() {
					fmt.Fprintf(c.out, "  %-18s %s\n", l.Key, l.Text)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the languages this client ships",
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, l := range types.SupportedLanguages {
					fmt.Fprintf(c.out, "%s\t%s\n", l, l.DisplayName())
				}
				return nil
			},
		},
	)
	return cmd
}

func newHealthCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.api.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend %s: %v", c.api.BaseURL(), err)
			}
			fmt.Fprintln(c.out, render.Field("status", resp.Status))
			fmt.Fprintln(c.out, render.Field("version", resp.Version))
			fmt.Fprintln(c.out, render.Field("timestamp", render.FormatDateTime(resp.Timestamp)))
			return nil
		},
	}
}

func newLanguagesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages the backend can answer in",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.api.Languages(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend %s: %v", c.api.BaseURL(), err)
			}
			if err := resp.Err("Failed to fetch languages"); err != nil {
				return fmt.Errorf("backend %s: %v", c.api.BaseURL(), err)
			}
			langs := resp.Languages
			sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
			for _, l := range langs {
				fmt.Fprintf(c.out, "%s\t%s\n", l.Code, l.Name)
			}
			return nil
		},
	}
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := c.cfg.Build
			fmt.Fprintf(c.out, "cropadvisor %s (commit %s, built %s)\n", b.Version, b.Commit, b.BuildTime)
			return nil
		},
	}
}
