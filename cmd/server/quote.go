package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/deal-engine/api"
	"github.com/warp/deal-engine/deals"
	"github.com/warp/deal-engine/factory"
	"github.com/warp/deal-engine/generic"
	"github.com/warp/deal-engine/pricing"
)

var (
	quoteHotelFile string
	quoteDealID    string
	quoteUnits     int
	quoteAll       bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <room.json>",
	Short: "Price a room document from a file",
	Long: `Reads a room document, and optionally its hotel document, and prints the
quote as JSON. Without --deal the first candidate deal is priced; with --all
every candidate is priced for one unit. Nothing is stored.`,
	Example: `  deal-engine quote room.json
  deal-engine quote room.json --hotel hotel.json --deal spring --units 2
  deal-engine quote room.json --all`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteHotelFile, "hotel", "", "Hotel document (JSON)")
	quoteCmd.Flags().StringVar(&quoteDealID, "deal", "", "Deal ID (default: first candidate)")
	quoteCmd.Flags().IntVar(&quoteUnits, "units", 1, "Number of rooms booked")
	quoteCmd.Flags().BoolVar(&quoteAll, "all", false, "Preview every candidate deal")
}

func runQuote(cmd *cobra.Command, args []string) error {
	roomJSON, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read room file: %w", err)
	}
	room, err := factory.ParseRoom(string(roomJSON))
	if err != nil {
		return err
	}

	var hotel pricing.Hotel
	if quoteHotelFile != "" {
		hotelJSON, err := os.ReadFile(quoteHotelFile)
		if err != nil {
			return fmt.Errorf("failed to read hotel file: %w", err)
		}
		if hotel, err = factory.ParseHotel(string(hotelJSON)); err != nil {
			return err
		}
	}

	engine := newEngine(cfg.Pricing)
	candidates, rejected := engine.Candidates(room)
	for _, rej := range rejected {
		logger.Warn().Str("kind", string(rej.Kind)).Int("position", rej.Position).Err(rej.Err).Msg("Deal rejected")
	}

	if quoteAll {
		quotes, err := engine.PreviewAll(context.Background(), room, hotel)
		if err != nil {
			return err
		}
		dtos := make([]api.QuoteDTO, len(quotes))
		for i, q := range quotes {
			dtos[i] = api.NewQuoteDTO(q)
		}
		return printJSON(dtos)
	}

	if len(candidates) == 0 {
		return fmt.Errorf("room has no valid deals (%d rejected)", len(rejected))
	}
	deal := candidates[0]
	if quoteDealID != "" {
		var ok bool
		if deal, ok = deals.Find(candidates, generic.DealID(quoteDealID)); !ok {
			return fmt.Errorf("deal %q: %w", quoteDealID, pricing.ErrDealNotFound)
		}
	}

	quote, err := engine.QuoteDeal(room, hotel, deal, quoteUnits)
	if err != nil {
		return err
	}
	return printJSON(api.NewQuoteDTO(quote))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
