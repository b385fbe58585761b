package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const registryContract = "certification_registry"

const registryABIJSON = `[
  {"inputs":[{"name":"farmer","type":"address"}],"name":"verify","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"farmer","type":"address"}],"name":"getCertification","outputs":[{"name":"certified","type":"bool"},{"name":"expiryDate","type":"uint256"},{"name":"certificationBody","type":"string"},{"name":"grantedAt","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"admin","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"account","type":"address"}],"name":"certifiers","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

var registryABI = mustParseABI(registryABIJSON)

// RegistryCertification is the on-chain certification fact for a farmer
// address.
type RegistryCertification struct {
	Certified         bool
	ExpiryDate        *big.Int
	CertificationBody string
	GrantedAt         *big.Int
}

// Registry reads the CertificationRegistry contract.
type Registry struct {
	client  *Client
	address common.Address
}

// NewRegistry binds the registry reader to a deployed contract address.
func NewRegistry(client *Client, address string) (*Registry, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid registry address %q", address)
	}
	return &Registry{client: client, address: common.HexToAddress(address)}, nil
}

// Verify reports whether the farmer currently holds a valid, unexpired
// certification according to the contract.
func (r *Registry) Verify(ctx context.Context, farmer string) (bool, error) {
	if !common.IsHexAddress(farmer) {
		return false, fmt.Errorf("invalid farmer address %q", farmer)
	}
	out, err := r.client.call(ctx, registryContract, r.address, registryABI, "verify", common.HexToAddress(farmer))
	if err != nil {
		return false, err
	}
	result := *abi.ConvertType(out[0], new(bool)).(*bool)
	return result, nil
}

// GetCertification returns the full on-chain certification fact.
func (r *Registry) GetCertification(ctx context.Context, farmer string) (*RegistryCertification, error) {
	if !common.IsHexAddress(farmer) {
		return nil, fmt.Errorf("invalid farmer address %q", farmer)
	}
	out, err := r.client.call(ctx, registryContract, r.address, registryABI, "getCertification", common.HexToAddress(farmer))
	if err != nil {
		return nil, err
	}

	cert := &RegistryCertification{
		Certified:         *abi.ConvertType(out[0], new(bool)).(*bool),
		ExpiryDate:        *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		CertificationBody: *abi.ConvertType(out[2], new(string)).(*string),
		GrantedAt:         *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
	}
	return cert, nil
}

// IsCertifier reports whether the account is an authorized certifier on the
// registry.
func (r *Registry) IsCertifier(ctx context.Context, account string) (bool, error) {
	if !common.IsHexAddress(account) {
		return false, fmt.Errorf("invalid account address %q", account)
	}
	out, err := r.client.call(ctx, registryContract, r.address, registryABI, "certifiers", common.HexToAddress(account))
	if err != nil {
		return false, err
	}
	result := *abi.ConvertType(out[0], new(bool)).(*bool)
	return result, nil
}
