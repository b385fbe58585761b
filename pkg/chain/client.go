package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/organictrace/organictrace-backend/pkg/config"
	"github.com/organictrace/organictrace-backend/pkg/metrics"
)

// ContractCaller is the subset of the RPC client the read path needs.
// Satisfied by *ethclient.Client; stubbed in tests.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client performs read-only contract calls against the configured node.
// Every call runs against the latest block with a per-call timeout; no
// retries beyond what the RPC transport provides.
type Client struct {
	caller      ContractCaller
	callTimeout time.Duration
	metrics     *metrics.ChainMetrics
}

// Dial connects to the JSON-RPC endpoint from config.
func Dial(ctx context.Context, cfg config.ChainConfig, chainMetrics *metrics.ChainMetrics) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("chain rpc url is required")
	}
	rpcClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing chain rpc: %w", err)
	}
	return NewClient(rpcClient, cfg.CallTimeout, chainMetrics), nil
}

// NewClient wraps an existing caller. Used directly by tests.
func NewClient(caller ContractCaller, callTimeout time.Duration, chainMetrics *metrics.ChainMetrics) *Client {
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &Client{
		caller:      caller,
		callTimeout: callTimeout,
		metrics:     chainMetrics,
	}
}

// call packs the method arguments, executes eth_call against the latest
// block, and unpacks the raw return values.
func (c *Client) call(ctx context.Context, contract string, to common.Address, parsed abi.ABI, method string, args ...any) ([]any, error) {
	input, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s.%s: %w", contract, method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	raw, err := c.caller.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: input}, nil)
	c.metrics.ObserveCall(contract, method, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("calling %s.%s: %w", contract, method, err)
	}

	out, err := parsed.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s.%s: %w", contract, method, err)
	}
	return out, nil
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded ABI: %v", err))
	}
	return parsed
}
