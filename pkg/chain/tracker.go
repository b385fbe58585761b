package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const trackerContract = "product_tracker"

const trackerABIJSON = `[
  {"inputs":[{"name":"productId","type":"uint256"}],"name":"getProduct","outputs":[{"name":"id","type":"uint256"},{"name":"farmer","type":"address"},{"name":"currentOwner","type":"address"},{"name":"productName","type":"string"},{"name":"createdAt","type":"uint256"},{"components":[{"name":"actor","type":"address"},{"name":"action","type":"string"},{"name":"timestamp","type":"uint256"},{"name":"details","type":"string"}],"name":"history","type":"tuple[]"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"productId","type":"uint256"}],"name":"getHistoryLength","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"farmer","type":"address"}],"name":"getFarmerProducts","outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"}
]`

var trackerABI = mustParseABI(trackerABIJSON)

// TrackedHistoryEntry is one append-only event recorded against a product on
// the tracker contract.
type TrackedHistoryEntry struct {
	Actor     common.Address
	Action    string
	Timestamp *big.Int
	Details   string
}

// TrackedProduct mirrors the contract's product struct plus its history.
type TrackedProduct struct {
	ID           *big.Int
	Farmer       common.Address
	CurrentOwner common.Address
	ProductName  string
	CreatedAt    *big.Int
	History      []TrackedHistoryEntry
}

// Tracker reads the ProductTracker contract.
type Tracker struct {
	client  *Client
	address common.Address
}

// NewTracker binds the tracker reader to a deployed contract address.
func NewTracker(client *Client, address string) (*Tracker, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid tracker address %q", address)
	}
	return &Tracker{client: client, address: common.HexToAddress(address)}, nil
}

// GetProduct fetches the product struct and its full history array.
func (t *Tracker) GetProduct(ctx context.Context, productID uint64) (*TrackedProduct, error) {
	out, err := t.client.call(ctx, trackerContract, t.address, trackerABI, "getProduct", new(big.Int).SetUint64(productID))
	if err != nil {
		return nil, err
	}

	rawHistory := *abi.ConvertType(out[5], new([]struct {
		Actor     common.Address `json:"actor"`
		Action    string         `json:"action"`
		Timestamp *big.Int       `json:"timestamp"`
		Details   string         `json:"details"`
	})).(*[]struct {
		Actor     common.Address `json:"actor"`
		Action    string         `json:"action"`
		Timestamp *big.Int       `json:"timestamp"`
		Details   string         `json:"details"`
	})

	history := make([]TrackedHistoryEntry, len(rawHistory))
	for i, entry := range rawHistory {
		history[i] = TrackedHistoryEntry{
			Actor:     entry.Actor,
			Action:    entry.Action,
			Timestamp: entry.Timestamp,
			Details:   entry.Details,
		}
	}

	return &TrackedProduct{
		ID:           *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Farmer:       *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		CurrentOwner: *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		ProductName:  *abi.ConvertType(out[3], new(string)).(*string),
		CreatedAt:    *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		History:      history,
	}, nil
}

// GetHistoryLength returns the number of history entries for the product.
func (t *Tracker) GetHistoryLength(ctx context.Context, productID uint64) (uint64, error) {
	out, err := t.client.call(ctx, trackerContract, t.address, trackerABI, "getHistoryLength", new(big.Int).SetUint64(productID))
	if err != nil {
		return 0, err
	}
	length := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return length.Uint64(), nil
}

// GetFarmerProducts returns the numeric product ids registered by the
// farmer.
func (t *Tracker) GetFarmerProducts(ctx context.Context, farmer string) ([]uint64, error) {
	if !common.IsHexAddress(farmer) {
		return nil, fmt.Errorf("invalid farmer address %q", farmer)
	}
	out, err := t.client.call(ctx, trackerContract, t.address, trackerABI, "getFarmerProducts", common.HexToAddress(farmer))
	if err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	ids := make([]uint64, len(raw))
	for i, id := range raw {
		ids[i] = id.Uint64()
	}
	return ids, nil
}
