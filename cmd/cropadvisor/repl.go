package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cropadvisor/internal/app"
	"cropadvisor/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const replHelp = `commands:
  tab <disease|market|weather|tips>   switch tab (first visit fetches)
  image <path>                        select a leaf image
  analyze                             detect disease in the selected image
  remedies | yield                    follow up on the last diagnosis
  crop <name>                         change crop (market and tips tabs)
  market <name>                       change market
  location <name>                     change weather location
  trends [days]                       append price trends
  fetch                               refetch the active tab
  lang <code>                         change language (en, hi, mr, te)
  labels                              show static labels
  show                                print the active tab
  reset                               clear the disease tab
  help | quit`

func newShellCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with tab switching",
		RunE: func(cmd *cobra.Command, args []string) error {
			shell, err := c.newShell(c.cfg.Modules)
			if err != nil {
				return err
			}
			defer shell.Close()

			shell.Welcome()
			c.printPane(shell, types.TabDisease)
			return c.repl(cmd.Context(), shell)
		},
	}
}

// interactive reports whether input comes from a terminal. Prompts are only
// printed for interactive sessions so piped scripts produce clean output.
func (c *cli) interactive() bool {
	f, ok := c.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *cli) prompt() {
	if c.interactive() {
		fmt.Fprint(c.out, "> ")
	}
}

func (c *cli) repl(ctx context.Context, shell *app.Shell) error {
	scanner := bufio.NewScanner(c.in)
	c.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			if fields[0] == "quit" || fields[0] == "exit" {
				return nil
			}
			if err := c.dispatch(ctx, shell, fields[0], strings.Join(fields[1:], " ")); err != nil {
				// Module failures were already notified; only input errors
				// need to be echoed.
				var appErr *types.AppError
				if errors.As(err, &appErr) {
					if msg, ok := inputError(appErr); ok {
						fmt.Fprintln(c.errOut, msg)
					}
				}
				c.logger.Debug("command failed", "command", fields[0], "error", err)
			}
		}
		c.prompt()
	}
	return scanner.Err()
}

func (c *cli) dispatch(ctx context.Context, shell *app.Shell, verb, arg string) error {
	active := shell.ActiveTab()
	show := func(tab types.Tab, err error) error {
		if err == nil {
			c.printPane(shell, tab)
		}
		return err
	}

	switch verb {
	case "help":
		fmt.Fprintln(c.out, replHelp)
		return nil
	case "tab":
		tab := types.Tab(arg)
		return show(tab, shell.SwitchTab(ctx, tab))
	case "image":
		return shell.Disease.SelectFile(arg)
	case "analyze":
		return show(types.TabDisease, shell.Disease.Analyze(ctx))
	case "remedies":
		return show(types.TabDisease, shell.Disease.Remedies(ctx))
	case "yield":
		return show(types.TabDisease, shell.Disease.YieldTips(ctx))
	case "reset":
		shell.Disease.Reset()
		return show(types.TabDisease, nil)
	case "crop":
		if active == types.TabTips {
			return show(types.TabTips, shell.Tips.SetCrop(ctx, arg))
		}
		return show(types.TabMarket, shell.Market.SetCrop(ctx, arg))
	case "market":
		return show(types.TabMarket, shell.Market.SetMarket(ctx, arg))
	case "location":
		return show(types.TabWeather, shell.Weather.SetLocation(ctx, arg))
	case "trends":
		days := c.cfg.Modules.TrendsDays
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("invalid days %q", arg), err)
			}
			days = n
		}
		shell.Market.Trends(ctx, days)
		return show(types.TabMarket, nil)
	case "fetch":
		var err error
		switch active {
		case types.TabMarket:
			err = shell.Market.Fetch(ctx)
		case types.TabWeather:
			err = shell.Weather.Fetch(ctx)
		case types.TabTips:
			err = shell.Tips.Fetch(ctx)
		default:
			err = shell.Disease.Analyze(ctx)
		}
		return show(active, err)
	case "lang":
		if err := shell.SetLanguage(arg); err != nil {
			return err
		}
		fmt.Fprintln(c.out, shell.Translator().Translatef("language_changed", map[string]string{
			"language": shell.Language().DisplayName(),
		}))
		return nil
	case "labels":
		for _, l := range shell.StaticLabels() {
			fmt.Fprintf(c.out, "  %-18s %s\n", l.Key, l.Text)
		}
		return nil
	case "show":
		return show(active, nil)
	default:
		return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("unknown command %q, try help", verb), nil)
	}
}
