package ens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChain answers registry and resolver calls from in-memory records.
type fakeChain struct {
	resolvers map[common.Hash]common.Address
	addrs     map[common.Hash]common.Address
	names     map[common.Hash]string
	avatars   map[common.Hash]string
	fail      error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		resolvers: map[common.Hash]common.Address{},
		addrs:     map[common.Hash]common.Address{},
		names:     map[common.Hash]string{},
		avatars:   map[common.Hash]string{},
	}
}

var publicResolver = common.HexToAddress("0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63")

func (f *fakeChain) register(name string, addr common.Address, avatar string) {
	node := Namehash(name)
	f.resolvers[node] = publicResolver
	f.addrs[node] = addr
	if avatar != "" {
		f.avatars[node] = avatar
	}
	rev := Namehash(ReverseName(addr))
	f.resolvers[rev] = publicResolver
	f.names[rev] = name
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	method, err := parsedABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	node := common.Hash(args[0].([32]byte))

	if *msg.To == RegistryAddress {
		if method.Name != "resolver" {
			return nil, fmt.Errorf("registry has no %s", method.Name)
		}
		return method.Outputs.Pack(f.resolvers[node])
	}
	switch method.Name {
	case "addr":
		return method.Outputs.Pack(f.addrs[node])
	case "name":
		return method.Outputs.Pack(f.names[node])
	case "text":
		return method.Outputs.Pack(f.avatars[node])
	}
	return nil, fmt.Errorf("unexpected %s", method.Name)
}

var vitalik = common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"":                         Invalid,
		"vitalik":                  Invalid,
		"vitalik.eth":              Name,
		"  Vitalik.ETH ":           Name,
		"sub.vitalik.eth":          Name,
		"a..eth":                   Invalid,
		".eth":                     Invalid,
		"has space.eth":            Invalid,
		vitalik.Hex():              Address,
		"0x1234":                   Invalid,
		"0xZZdA6BF26964aF9D7eEd9e": Invalid,
	}
	for q, want := range cases {
		assert.Equal(t, want, Classify(q), "query %q", q)
	}
}

func TestNamehash(t *testing.T) {
	assert.Equal(t, common.Hash{}, Namehash(""))
	assert.Equal(t,
		common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"),
		Namehash("eth"))
	assert.Equal(t,
		common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"),
		Namehash("foo.eth"))
	assert.Equal(t, Namehash("foo.eth"), Namehash("FOO.eth"))
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t, "https://x.io/a.png", AvatarURL("https://x.io/a.png"))
	assert.Equal(t, "https://ipfs.io/ipfs/Qm123", AvatarURL("ipfs://Qm123"))
	assert.Equal(t, "https://ipfs.io/ipfs/Qm123", AvatarURL("ipfs://ipfs/Qm123"))
	assert.Equal(t, "", AvatarURL("eip155:1/erc721:0xabc/1"))
}

func TestResolveName(t *testing.T) {
	chain := newFakeChain()
	chain.register("vitalik.eth", vitalik, "ipfs://QmCat")
	r := NewRPCResolver(chain)

	id, err := r.Resolve(context.Background(), "Vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, vitalik.Hex(), id.Address)
	assert.Equal(t, "vitalik.eth", id.Name)
	assert.Equal(t, "https://ipfs.io/ipfs/QmCat", id.Avatar)
}

func TestResolveAddress(t *testing.T) {
	chain := newFakeChain()
	chain.register("vitalik.eth", vitalik, "")
	r := NewRPCResolver(chain)

	id, err := r.Resolve(context.Background(), vitalik.Hex())
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", id.Name)
	assert.Equal(t, vitalik.Hex(), id.Address)
	assert.Empty(t, id.Avatar)
}

func TestResolveFailures(t *testing.T) {
	chain := newFakeChain()
	r := NewRPCResolver(chain)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "nobody.eth")
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = r.Resolve(ctx, vitalik.Hex())
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = r.Resolve(ctx, "not a name")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	chain.register("vitalik.eth", vitalik, "")
	chain.fail = errors.New("rpc down")
	_, err = r.Resolve(ctx, "vitalik.eth")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestHistory(t *testing.T) {
	var h History
	for i := 0; i < 7; i++ {
		h.Add(Identity{Address: fmt.Sprintf("0x%02d", i), Name: fmt.Sprintf("p%d.eth", i)})
	}
	list := h.List()
	require.Len(t, list, HistoryLimit)
	assert.Equal(t, "p6.eth", list[0].Name)
	assert.Equal(t, "p2.eth", list[4].Name)

	h.Add(Identity{Address: "0x04", Name: "again.eth"})
	assert.Equal(t, list, h.List(), "duplicate address is ignored")

	h.Clear()
	assert.Empty(t, h.List())
}

func TestHistoriesPerOwner(t *testing.T) {
	hs := NewHistories()
	hs.For("0xAbC").Add(Identity{Address: "0x01"})
	assert.Len(t, hs.For("0xabc").List(), 1)
	assert.Empty(t, hs.For("0xdef").List())
}
