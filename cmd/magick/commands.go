// cmd/magick/commands.go
package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"magick-cards/internal/models"
)

type appFunc func() *app

// -- daily --

func newDailyCmd(getApp appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Show the card of the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := getApp().daily.Today(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sel)
		},
	}
}

// -- draw --

func newDrawCmd(getApp appFunc) *cobra.Command {
	var (
		deckID string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw a random card from a deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			card, err := getApp().catalog.Draw(deckID, rng)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), card)
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "deck id to draw from")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible draw")
	_ = cmd.MarkFlagRequired("deck")
	return cmd
}

// -- recommend --

func newRecommendCmd(getApp appFunc) *cobra.Command {
	var cardID string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend up to three nearby businesses for a card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()

			card, err := a.catalog.Card(cardID)
			if err != nil {
				return err
			}

			a.settings.Load(ctx)
			select {
			case <-a.settings.BackfillDone():
			case <-ctx.Done():
				return ctx.Err()
			}

			recs, err := a.recommender.Recommend(ctx, &card, a.settings.Snapshot())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().StringVar(&cardID, "card", "", "card id to recommend for")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}

// -- favorite --

func newFavoriteCmd(getApp appFunc) *cobra.Command {
	favoriteCmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage favorite cards",
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <card-id>",
		Short: "Add a card to favorites, or remove it if already there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			ctx := cmd.Context()

			if _, err := a.catalog.Card(args[0]); err != nil {
				return err
			}

			a.favorites.Load(ctx)
			favorited, outcome, err := a.favorites.Toggle(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"cardId":   args[0],
				"favorite": favorited,
				"saved":    !outcome.UsedFallback(),
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List favorite cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			a.favorites.Load(cmd.Context())
			return printJSON(cmd.OutOrStdout(), a.favorites.FavoriteCards(a.catalog.Cards()))
		},
	}

	favoriteCmd.AddCommand(toggleCmd, listCmd)
	return favoriteCmd
}

// -- settings --

func newSettingsCmd(getApp appFunc) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			s, _ := a.settings.Load(cmd.Context())
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	var (
		darkMode bool
		mode     string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change dark mode or the monetization mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()

			var patch models.SettingsPatch
			if cmd.Flags().Changed("dark-mode") {
				patch.DarkMode = &darkMode
			}
			if cmd.Flags().Changed("mode") {
				m, err := models.ParseMonetizationMode(mode)
				if err != nil {
					return err
				}
				patch.MonetizationMode = &m
			}
			if patch.DarkMode == nil && patch.MonetizationMode == nil {
				return fmt.Errorf("nothing to change: pass --dark-mode or --mode")
			}

			a.settings.Load(ctx)
			s, _, err := a.settings.Update(ctx, patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
	setCmd.Flags().BoolVar(&darkMode, "dark-mode", false, "enable or disable dark mode")
	setCmd.Flags().StringVar(&mode, "mode", "", "monetization mode: affiliate or sponsor")

	refreshCmd := &cobra.Command{
		Use:   "refresh-location",
		Short: "Look up the current location again and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()

			a.settings.Load(ctx)
			<-a.settings.BackfillDone()
			s, _, err := a.settings.RefreshLocation(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	settingsCmd.AddCommand(showCmd, setCmd, refreshCmd)
	return settingsCmd
}
