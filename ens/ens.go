// Package ens resolves players by ENS name or wallet address.
package ens

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidQuery = errors.New("not an ENS name or address")
	ErrUnresolved   = errors.New("unable to resolve ENS name or address")
)

type Kind uint8

const (
	Invalid Kind = iota
	Address
	Name
)

// Identity is a resolved player.
type Identity struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
}

// Resolver turns a search query into an identity.
type Resolver interface {
	Resolve(ctx context.Context, query string) (Identity, error)
}

// Classify tells addresses and ENS names apart. Names need a dot and no
// empty labels.
func Classify(q string) Kind {
	q = strings.TrimSpace(q)
	if q == "" {
		return Invalid
	}
	if strings.HasPrefix(q, "0x") || strings.HasPrefix(q, "0X") {
		if common.IsHexAddress(q) {
			return Address
		}
		return Invalid
	}
	if !strings.Contains(q, ".") || strings.ContainsAny(q, " \t/") {
		return Invalid
	}
	for _, label := range strings.Split(q, ".") {
		if label == "" {
			return Invalid
		}
	}
	return Name
}

// Normalize lowercases and trims a name. Full UTS-46 mapping is left to
// the client.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Namehash is the EIP-137 node of name.
func Namehash(name string) common.Hash {
	var node common.Hash
	name = Normalize(name)
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), label)
	}
	return node
}

// ReverseName is the addr.reverse record for an address.
func ReverseName(addr common.Address) string {
	return strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse"
}

// AvatarURL turns an avatar text record into something a browser can load.
// NFT references (eip155:...) are not followed.
func AvatarURL(record string) string {
	record = strings.TrimSpace(record)
	switch {
	case strings.HasPrefix(record, "https://"), strings.HasPrefix(record, "http://"):
		return record
	case strings.HasPrefix(record, "ipfs://"):
		return "https://ipfs.io/ipfs/" + strings.TrimPrefix(strings.TrimPrefix(record, "ipfs://"), "ipfs/")
	}
	return ""
}
