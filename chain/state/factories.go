package state

import (
	"github.com/crytic/forge-core/chain/types"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core/state"
)

/*
ChainStateFactory defines a thread-safe interface for creating new state databases. This abstraction allows globally
shared data like RPC caches to be shared across all TestChain instances.
*/
type ChainStateFactory interface {
	// New initializes a new state
	New(root common.Hash, db state.Database) (types.ChainStateDB, error)
}

var _ ChainStateFactory = (*UnbackedStateFactory)(nil)
var _ ChainStateFactory = (*ForkedStateFactory)(nil)

// ForkedStateFactory is used to build StateDBs that are backed by a remote RPC
type ForkedStateFactory struct {
	globalRemoteStateQuery StateBackend
}

func NewForkedStateFactory(globalCache StateBackend) *ForkedStateFactory {
	return &ForkedStateFactory{globalCache}
}

func (f *ForkedStateFactory) New(root common.Hash, db state.Database) (types.ChainStateDB, error) {
	remoteStateProvider := newRemoteStateProvider(f.globalRemoteStateQuery)
	return state.NewForkedStateDb(root, db, remoteStateProvider)
}

// UnbackedStateFactory is used to build StateDBs that are not backed by any remote state, but still use the custom
// forked stateDB logic around state object existence checks.
type UnbackedStateFactory struct{}

func NewUnbackedStateFactory() *UnbackedStateFactory {
	return &UnbackedStateFactory{}
}

func (f *UnbackedStateFactory) New(root common.Hash, db state.Database) (types.ChainStateDB, error) {
	remoteStateProvider := newRemoteStateProvider(EmptyBackend{})
	return state.NewForkedStateDb(root, db, remoteStateProvider)
}

var _ ChainStateFactory = (*VanillaStateFactory)(nil)

// VanillaStateFactory builds plain, unforked geth StateDBs. This is the factory used whenever fork mode is
// disabled, reproducing vanilla geth statedb semantics with no remote read-through.
type VanillaStateFactory struct{}

// NewVanillaStateFactory returns a new VanillaStateFactory.
func NewVanillaStateFactory() *VanillaStateFactory {
	return &VanillaStateFactory{}
}

func (f *VanillaStateFactory) New(root common.Hash, db state.Database) (types.ChainStateDB, error) {
	return state.New(root, db)
}
