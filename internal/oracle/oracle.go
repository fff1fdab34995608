// Package oracle reads a Chainlink-style price feed aggregator over a
// read-only Ethereum JSON-RPC connection, used to backfill the reference
// oracle price for markets that don't carry one in their capture data.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// aggregatorABI covers the two Chainlink AggregatorV3Interface views this
// package calls: latestRoundData and decimals.
const aggregatorABI = `[
	{"inputs":[],"name":"latestRoundData","outputs":[
		{"internalType":"uint80","name":"roundId","type":"uint80"},
		{"internalType":"int256","name":"answer","type":"int256"},
		{"internalType":"uint256","name":"startedAt","type":"uint256"},
		{"internalType":"uint256","name":"updatedAt","type":"uint256"},
		{"internalType":"uint80","name":"answeredInRound","type":"uint80"}
	],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// Client reads latestRoundData from a Chainlink-style aggregator contract
// over a read-only RPC connection.
type Client struct {
	rpc    *ethclient.Client
	abi    abi.ABI
	logger *slog.Logger
}

// Dial connects to rpcURL and returns a Client ready to query aggregators.
func Dial(ctx context.Context, rpcURL string, logger *slog.Logger) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC %s: %w", rpcURL, err)
	}

	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("parse aggregator ABI: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Client{rpc: rpc, abi: parsed, logger: logger.With("component", "oracle")}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() { c.rpc.Close() }

// LatestRoundData calls latestRoundData() and decimals() on aggregator and
// returns the decoded price, scaled by the feed's own decimals.
func (c *Client) LatestRoundData(ctx context.Context, aggregator common.Address) (price float64, roundID uint64, updatedAt time.Time, err error) {
	decimalsOut, err := c.call(ctx, aggregator, "decimals")
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("call decimals: %w", err)
	}
	decimals, ok := decimalsOut[0].(uint8)
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("unexpected decimals return type %T", decimalsOut[0])
	}

	roundOut, err := c.call(ctx, aggregator, "latestRoundData")
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("call latestRoundData: %w", err)
	}

	roundIDBig, ok := roundOut[0].(*big.Int)
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("unexpected roundId return type %T", roundOut[0])
	}
	answer, ok := roundOut[1].(*big.Int)
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("unexpected answer return type %T", roundOut[1])
	}
	updatedAtBig, ok := roundOut[3].(*big.Int)
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("unexpected updatedAt return type %T", roundOut[3])
	}

	scaled := scaleAnswer(answer, decimals)
	return scaled, roundIDBig.Uint64(), time.Unix(updatedAtBig.Int64(), 0), nil
}

func (c *Client) call(ctx context.Context, aggregator common.Address, method string) ([]interface{}, error) {
	data, err := c.abi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s call: %w", method, err)
	}

	raw, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &aggregator, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: %w", method, err)
	}

	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s result: %w", method, err)
	}
	return out, nil
}

// scaleAnswer converts a raw Chainlink answer (an integer scaled by
// 10^decimals) into a float64 price.
func scaleAnswer(answer *big.Int, decimals uint8) float64 {
	f := new(big.Float).SetInt(answer)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f.Quo(f, divisor)
	result, _ := f.Float64()
	return result
}

// Backfill fetches one oracle price per market, keyed by market_id. Each
// price is the aggregator's latest round at the time of the call; the
// market's close time is not used, so no historical round is looked up.
// RPC failures for a single market are a
// data error: logged and left out of the returned map rather than
// aborting the whole backfill — ingestion proceeds without an oracle price
// for that market (the scripted strategy default of "missing -> 0.0"
// already covers this).
func (c *Client) Backfill(ctx context.Context, markets []types.Market, aggregator common.Address) (map[string]float64, error) {
	prices := make(map[string]float64, len(markets))

	for _, m := range markets {
		price, _, _, err := c.LatestRoundData(ctx, aggregator)
		if err != nil {
			c.logger.Warn("oracle backfill failed for market, leaving unset", "market", m.ID, "error", err)
			continue
		}
		prices[m.ID] = price
	}

	return prices, nil
}
