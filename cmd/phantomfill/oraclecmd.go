package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/dapdevsoftware/phantomfill/internal/oracle"
	"github.com/dapdevsoftware/phantomfill/internal/storage"
)

var oracleBackfillFlags struct {
	dbPath     string
	rpcURL     string
	aggregator string
}

var oracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Oracle price operations",
}

var oracleBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill a reference oracle price for every stored market",
	RunE:  runOracleBackfill,
}

func init() {
	f := oracleBackfillCmd.Flags()
	f.StringVar(&oracleBackfillFlags.dbPath, "db", "phantomfill.db", "path to the SQLite store")
	f.StringVar(&oracleBackfillFlags.rpcURL, "rpc-url", "", "Ethereum/Polygon JSON-RPC endpoint (required)")
	f.StringVar(&oracleBackfillFlags.aggregator, "aggregator", "", "Chainlink aggregator contract address (required)")
	_ = oracleBackfillCmd.MarkFlagRequired("rpc-url")
	_ = oracleBackfillCmd.MarkFlagRequired("aggregator")

	oracleCmd.AddCommand(oracleBackfillCmd)
	rootCmd.AddCommand(oracleCmd)
}

func runOracleBackfill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := storage.Open(oracleBackfillFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", oracleBackfillFlags.dbPath, err)
	}
	defer store.Close()

	markets, err := store.Markets(storage.MarketFilter{})
	if err != nil {
		return fmt.Errorf("list markets: %w", err)
	}

	client, err := oracle.Dial(ctx, oracleBackfillFlags.rpcURL, nil)
	if err != nil {
		return fmt.Errorf("dial oracle RPC: %w", err)
	}
	defer client.Close()

	aggregator := common.HexToAddress(oracleBackfillFlags.aggregator)
	prices, err := client.Backfill(ctx, markets, aggregator)
	if err != nil {
		return fmt.Errorf("backfill oracle prices: %w", err)
	}

	for marketID, price := range prices {
		if err := store.SetOraclePrice(marketID, price); err != nil {
			return fmt.Errorf("persist oracle price for %s: %w", marketID, err)
		}
	}

	fmt.Printf("fetched and stored oracle prices for %d of %d market(s)\n", len(prices), len(markets))
	return nil
}
