package ens

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RegistryAddress is the ENS registry on Ethereum mainnet.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const ensABI = `[
	{"name":"resolver","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"addr","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"name","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]},
	{"name":"text","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"}],"outputs":[{"name":"","type":"string"}]}
]`

var parsedABI = mustABI(ensABI)

func mustABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return a
}

// Caller is the slice of an Ethereum client that resolution needs.
// *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// RPCResolver reads ENS records through eth_call.
type RPCResolver struct {
	caller   Caller
	registry common.Address
}

func NewRPCResolver(c Caller) *RPCResolver {
	return &RPCResolver{caller: c, registry: RegistryAddress}
}

// Dial connects to a JSON-RPC endpoint. The client is returned so the
// caller can Close it.
func Dial(ctx context.Context, url string) (*RPCResolver, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewRPCResolver(client), client, nil
}

func (r *RPCResolver) Resolve(ctx context.Context, query string) (Identity, error) {
	query = strings.TrimSpace(query)
	switch Classify(query) {
	case Address:
		return r.reverse(ctx, common.HexToAddress(query))
	case Name:
		return r.forward(ctx, Normalize(query))
	}
	return Identity{}, fmt.Errorf("%w: %q", ErrInvalidQuery, query)
}

func (r *RPCResolver) forward(ctx context.Context, name string) (Identity, error) {
	node := Namehash(name)
	res, err := r.resolverOf(ctx, node)
	if err != nil {
		return Identity{}, err
	}
	var addr common.Address
	if err := r.call(ctx, res, &addr, "addr", node); err != nil {
		return Identity{}, err
	}
	if addr == (common.Address{}) {
		return Identity{}, fmt.Errorf("%w: %s has no address", ErrUnresolved, name)
	}
	return Identity{Address: addr.Hex(), Name: name, Avatar: r.avatar(ctx, res, node)}, nil
}

func (r *RPCResolver) reverse(ctx context.Context, addr common.Address) (Identity, error) {
	node := Namehash(ReverseName(addr))
	res, err := r.resolverOf(ctx, node)
	if err != nil {
		return Identity{}, err
	}
	var name string
	if err := r.call(ctx, res, &name, "name", node); err != nil {
		return Identity{}, err
	}
	if name == "" {
		return Identity{}, fmt.Errorf("%w: %s has no primary name", ErrUnresolved, addr.Hex())
	}

	id := Identity{Address: addr.Hex(), Name: name}
	fwd := Namehash(name)
	if nameRes, err := r.resolverOf(ctx, fwd); err == nil {
		id.Avatar = r.avatar(ctx, nameRes, fwd)
	}
	return id, nil
}

// avatar is best effort; a missing record is not an error.
func (r *RPCResolver) avatar(ctx context.Context, res common.Address, node common.Hash) string {
	var rec string
	if err := r.call(ctx, res, &rec, "text", node, "avatar"); err != nil {
		return ""
	}
	return AvatarURL(rec)
}

func (r *RPCResolver) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	var res common.Address
	if err := r.call(ctx, r.registry, &res, "resolver", node); err != nil {
		return common.Address{}, err
	}
	if res == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver set", ErrUnresolved)
	}
	return res, nil
}

func (r *RPCResolver) call(ctx context.Context, to common.Address, out any, method string, args ...any) error {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("packing %s: %w", method, err)
	}
	raw, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("%w: %s call: %v", ErrUnresolved, method, err)
	}
	vals, err := parsedABI.Unpack(method, raw)
	if err != nil || len(vals) != 1 {
		return fmt.Errorf("%w: decoding %s result", ErrUnresolved, method)
	}
	switch o := out.(type) {
	case *common.Address:
		v, ok := vals[0].(common.Address)
		if !ok {
			return fmt.Errorf("%w: %s returned %T", ErrUnresolved, method, vals[0])
		}
		*o = v
	case *string:
		v, ok := vals[0].(string)
		if !ok {
			return fmt.Errorf("%w: %s returned %T", ErrUnresolved, method, vals[0])
		}
		*o = v
	default:
		return fmt.Errorf("unsupported output %T", out)
	}
	return nil
}
