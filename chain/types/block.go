package types

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core"
	gethTypes "github.com/crytic/medusa-geth/core/types"
)

// Block represents a block tracked by a TestChain. Unlike a go-ethereum block, it additionally tracks the
// MessageResults produced by each of its Messages, and the BaseBlockContext captured when it was first created,
// before cheatcodes (e.g. warp, roll) mutate the header in place.
type Block struct {
	// Header is the go-ethereum block header. Its fields may be mutated in place by cheatcodes while this block is
	// pending; Hash should be recomputed from it whenever that happens.
	Header *gethTypes.Header

	// Hash is the block hash, cached separately from Header since it is relatively expensive to recompute and is
	// not implicitly kept in sync when Header's fields are mutated.
	Hash common.Hash

	// BaseContext captures the block number, timestamp, base fee, and coinbase this block was created with, prior
	// to any cheatcode mutation. Nothing in this module reads it back.
	BaseContext *BaseBlockContext

	// Messages holds the transactions applied to this block, in order.
	Messages []*core.Message

	// MessageResults holds the per-transaction execution results corresponding to Messages, in the same order.
	MessageResults []*MessageResults
}

// NewBlock creates a Block wrapping the provided header, deriving its Hash and BaseContext from it.
func NewBlock(header *gethTypes.Header) *Block {
	return &Block{
		Header:         header,
		Hash:           header.Hash(),
		BaseContext:    NewBaseBlockContext(header.Number.Uint64(), header.Time, header.BaseFee, header.Coinbase),
		Messages:       make([]*core.Message, 0),
		MessageResults: make([]*MessageResults, 0),
	}
}
