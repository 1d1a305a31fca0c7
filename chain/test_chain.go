package chain

import (
	"fmt"
	"math/big"

	compilationTypes "github.com/crytic/forge-core/compilation/types"

	"github.com/crytic/forge-core/chain/state"
	"golang.org/x/net/context"

	"github.com/crytic/medusa-geth/core/rawdb"
	"github.com/crytic/medusa-geth/triedb"
	"github.com/crytic/medusa-geth/triedb/hashdb"
	"github.com/crytic/forge-core/chain/config"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"

	"github.com/crytic/medusa-geth/common"
	cryptoutils "github.com/crytic/medusa-geth/crypto"
	"github.com/crytic/medusa-geth/core"
	gethState "github.com/crytic/medusa-geth/core/state"
	gethTypes "github.com/crytic/medusa-geth/core/types"
	"github.com/crytic/medusa-geth/core/vm"
	"github.com/crytic/medusa-geth/ethdb"
	"github.com/crytic/medusa-geth/params"
	"github.com/crytic/forge-core/chain/types"
	"github.com/crytic/forge-core/utils"
)

var _, MAX_UINT_64 = utils.GetIntegerConstraints(false, 64)

// TestChain represents a simulated Ethereum chain used for testing. It maintains blocks in-memory and strips away
// typical consensus/chain objects to allow for more specialized testing closer to the EVM.
type TestChain struct {
	// blocks represents the blocks committed on the current chain. Only the genesis block is ever added; a block
	// number that is not in this list is reported as an error by BlockFromNumber.
	blocks []*types.Block

	// pendingBlockContext is the vm.BlockContext of the EVM instance most recently created for a Call. This is
	// used to override the EVM interpreter's behavior, e.g. for cheatcodes.
	pendingBlockContext *vm.BlockContext

	// pendingBlockChainConfig is the params.ChainConfig of the EVM instance most recently created for a Call. This
	// is used by cheatcodes to override the chain ID.
	pendingBlockChainConfig *params.ChainConfig

	// testChainConfig represents the configuration used by this TestChain.
	testChainConfig *config.TestChainConfig

	// chainConfig represents the configuration used to instantiate and manage this chain's underlying go-ethereum
	// components.
	chainConfig *params.ChainConfig

	// vmConfigExtensions defines EVM extensions to use with each chain call or transaction.
	vmConfigExtensions *vm.ConfigExtensions

	// genesisDefinition represents the Genesis information used to generate the chain's initial state.
	genesisDefinition *core.Genesis

	// state represents the current Ethereum world (interface implementing state.StateDB). It tracks all state across
	// the chain and dummyChain and is the subject of state changes when executing new transactions. This does not
	// track the current block head or anything of that nature and simply tracks accounts, balances, code, storage, etc.
	state types.ChainStateDB

	// stateDatabase refers to the database object which state uses to store data. It is constructed over db.
	stateDatabase gethState.Database

	// db represents the in-memory database used by the TestChain and its underlying chain to store state changes.
	// This is constructed over the kvstore.
	db ethdb.Database

	// Labels maps an address to its label if one exists. This is useful for execution tracing.
	Labels map[common.Address]string

	// callTracerRouter forwards tracers.Tracer and TestChainTracer calls to any instances added to it, for every
	// call made through Call.
	callTracerRouter *TestChainTracerRouter

	// stateFactory used to construct state databases from db/root. Abstracts away the backing RPC when running in
	// fork mode.
	stateFactory      state.ChainStateFactory
	CompiledContracts map[string]*compilationTypes.CompiledContract

	// cheatTracer is the cheat code tracer bound to this chain, or nil if cheatcodes are disabled. It is kept
	// here (rather than only in vmConfigExtensions) so callers outside this package can query expectRevert outcomes.
	cheatTracer *cheatCodeTracer
}

// NewTestChain creates a simulated Ethereum backend used for testing, or returns an error if one occurred.
// This creates a test chain with a test chain configuration and the provided genesis allocation and config.
// If a nil config is provided, a default one is used.
func NewTestChain(
	fuzzerContext context.Context,
	genesisAlloc gethTypes.GenesisAlloc,
	testChainConfig *config.TestChainConfig) (*TestChain, error) {

	// Use a default config if we were not provided one
	var err error
	if testChainConfig == nil {
		testChainConfig, err = config.DefaultTestChainConfig()
		if err != nil {
			return nil, err
		}
	}
	var stateFactory state.ChainStateFactory
	var forkBlockInfo *state.ForkBlockInfo
	if testChainConfig.ForkConfig.ForkModeEnabled {
		provider, err := state.NewRPCBackend(
			fuzzerContext,
			testChainConfig.ForkConfig.RpcUrl,
			testChainConfig.ForkConfig.RpcBlock,
			testChainConfig.ForkConfig.PoolSize)
		if err != nil {
			return nil, err
		}
		stateFactory = state.NewForkedStateFactory(provider)

		// Hydrate genesis from the pinned block's real header, so block.timestamp/block.number/block.basefee seen by
		// forked contracts reflect the forked chain rather than a fresh local genesis at block 0.
		forkBlockInfo, err = provider.BlockInfo()
		if err != nil {
			return nil, err
		}
	} else {
		stateFactory = state.NewVanillaStateFactory()
	}

	return newTestChainWithStateFactory(genesisAlloc, testChainConfig, stateFactory, forkBlockInfo)
}

// newTestChainWithStateFactory creates a simulated backend, using the provided stateFactory for optionally fetching
// remote state if RPC mode is configured. forkBlockInfo, when non-nil, seeds the genesis block's timestamp, number,
// base fee, and coinbase from a pinned remote block instead of the zero-valued local defaults.
func newTestChainWithStateFactory(
	genesisAlloc gethTypes.GenesisAlloc,
	testChainConfig *config.TestChainConfig,
	stateFactory state.ChainStateFactory,
	forkBlockInfo *state.ForkBlockInfo) (*TestChain, error) {

	// Copy our chain config, so it is not shared across chains.
	chainConfig, err := utils.CopyChainConfig(params.TestChainConfig)
	if err != nil {
		return nil, err
	}

	// TODO: go-ethereum doesn't set prague start time for THEIR test `ChainConfig` struct.
	//   Note: We have our own `TestChainConfig` definition that is different (second argument in this function).
	//  We should allow the user to provide a go-ethereum `ChainConfig` to do custom fork selection, inside of our
	//  `TestChainConfig` definition. Or we should wrap it in our own struct to simplify the options and not pollute
	//  our overall project config.
	pragueTime := uint64(0)
	chainConfig.PragueTime = &pragueTime
	chainConfig.ShanghaiTime = &pragueTime
	chainConfig.CancunTime = &pragueTime
	// Set the default blob schedule
	chainConfig.BlobScheduleConfig = params.DefaultBlobSchedule

	// Create our genesis definition with our default chain config. When forking, seed the timestamp, number,
	// base fee, and coinbase from the pinned remote block rather than using a fresh local genesis at block 0.
	timestamp := uint64(0)
	number := uint64(0)
	gasLimit := uint64(0)
	baseFee := big.NewInt(0)
	coinbase := common.Address{}
	if forkBlockInfo != nil {
		timestamp = forkBlockInfo.Timestamp
		number = forkBlockInfo.Number
		gasLimit = forkBlockInfo.GasLimit
		baseFee = forkBlockInfo.BaseFee
		coinbase = forkBlockInfo.Coinbase
	}

	genesisDefinition := &core.Genesis{
		Config:     chainConfig,
		Nonce:      0,
		Timestamp:  timestamp,
		ExtraData:  []byte{},
		GasLimit:   gasLimit,
		Difficulty: common.Big0,
		Mixhash:    common.Hash{},
		Coinbase:   coinbase,
		Alloc:      maps.Clone(genesisAlloc), // cloned so the caller's map isn't mutated by genesis commit
		Number:     number,
		GasUsed:    0,
		ParentHash: common.Hash{},
		BaseFee:    baseFee,
	}

	// Obtain our VM extensions from our config
	vmConfigExtensions := testChainConfig.GetVMConfigExtensions()

	// Add all cheat code contract addresses to the genesis config. This is done because cheat codes are implemented
	// as pre-compiles, but we still want code to exist at these addresses, because smart contracts compiled with
	// newer solidity versions perform code size checks prior to external calls.
	// Additionally, add the pre-compiled cheat code contract to our vm extensions.
	var cheatTracer *cheatCodeTracer
	if testChainConfig.CheatCodeConfig.CheatCodesEnabled {
		// Obtain our cheatcode providers
		var cheatContracts []*CheatCodeContract
		cheatTracer, cheatContracts, err = getCheatCodeProviders()
		if err != nil {
			return nil, err
		}
		for _, cheatContract := range cheatContracts {
			genesisDefinition.Alloc[cheatContract.address] = gethTypes.Account{
				Balance: big.NewInt(0),
				Code:    []byte{0xFF},
			}
			vmConfigExtensions.AdditionalPrecompiles[cheatContract.address] = cheatContract
		}
	}

	// Create an in-memory database
	db := rawdb.NewMemoryDatabase()
	dbConfig := &triedb.Config{
		HashDB: hashdb.Defaults,
		// TODO	Add cleanCacheSize of 256 depending on the resolution of this issue https://github.com/crytic/medusa-geth/issues/30099
		// PathDB: pathdb.Defaults,
	}
	trieDB := triedb.NewDatabase(db, dbConfig)

	// Commit our genesis definition to get a genesis block.
	genesisBlock := genesisDefinition.MustCommit(db, trieDB)

	// Convert our genesis block (go-ethereum type) to a test chain block.
	testChainGenesisBlock := types.NewBlock(genesisBlock.Header())
	// Create our state database over-top our database.
	stateDatabase := gethState.NewDatabase(trieDB, nil)

	// Create a tracer forwarder to support the addition of multiple tracers for call execution.
	callTracerRouter := NewTestChainTracerRouter()

	// Create our instance
	chain := &TestChain{
		genesisDefinition:  genesisDefinition,
		blocks:             []*types.Block{testChainGenesisBlock},
		db:                 db,
		state:              nil,
		stateDatabase:      stateDatabase,
		Labels:             make(map[common.Address]string),
		callTracerRouter:   callTracerRouter,
		testChainConfig:    testChainConfig,
		chainConfig:        genesisDefinition.Config,
		vmConfigExtensions: vmConfigExtensions,
		stateFactory:       stateFactory,
		CompiledContracts:  make(map[string]*compilationTypes.CompiledContract),
	}

	// Add our internal tracers to this chain.
	if testChainConfig.CheatCodeConfig.CheatCodesEnabled {
		chain.AddTracer(cheatTracer.NativeTracer())
		cheatTracer.bindToChain(chain)
		chain.cheatTracer = cheatTracer
	}

	// Obtain the state for the genesis block and set it as the chain's current state.
	stateDB, err := chain.StateAfterBlockNumber(0)
	if err != nil {
		return nil, err
	}
	chain.state = stateDB

	return chain, nil
}

// Close will release any objects from the TestChain that must be _explicitly_ released. Currently, the one object that
// must be explicitly released is the stateDB trie's underlying cache. This cache, if not released, prevents the TestChain
// object from being freed by the garbage collector and causes a severe memory leak.
func (t *TestChain) Close() {
	// Reset the state DB's cache
	t.stateDatabase.TrieDB().Close()
}

// AddTracer adds a given tracers.Tracer or TestChainTracer to the TestChain for non-state-changing calls made via
// Call.
func (t *TestChain) AddTracer(tracer *TestChainTracer) {
	t.callTracerRouter.AddTracer(tracer)
}

// GenesisDefinition returns the core.Genesis definition used to initialize the chain.
func (t *TestChain) GenesisDefinition() *core.Genesis {
	return t.genesisDefinition
}

// State returns the current state.StateDB of the chain.
func (t *TestChain) State() types.ChainStateDB {
	return t.state
}

// CheatCodeContracts returns all cheat code contracts which are installed in the chain.
func (t *TestChain) CheatCodeContracts() map[common.Address]*CheatCodeContract {
	// Create a map of cheat code contracts to store our results
	contracts := make(map[common.Address]*CheatCodeContract, 0)

	// Loop for each precompile, and try to see any which are of the "cheat code contract" type.
	for address, precompile := range t.vmConfigExtensions.AdditionalPrecompiles {
		if cheatCodeContract, ok := precompile.(*CheatCodeContract); ok {
			contracts[address] = cheatCodeContract
		}
	}

	// Return the results
	return contracts
}

// ConsumeExpectedRevertOutcome reports and clears whether an armed expectRevert cheatcode was satisfied by the
// most recently executed transaction. The second return value is false if no expectRevert was armed, in which
// case the first return value is meaningless. Returns false, false if cheatcodes are disabled on this chain.
func (t *TestChain) ConsumeExpectedRevertOutcome() (matched bool, armed bool) {
	if t.cheatTracer == nil {
		return false, false
	}
	return t.cheatTracer.ConsumeExpectedRevertOutcome()
}

// ThrowAssertionError overrides the result of the most recently executed transaction on this chain to look like
// a Solidity assert() panic. This is used by the DSTest assertion convention, where helper libraries signal a
// failed assertion through a sentinel storage write rather than a revert.
func (t *TestChain) ThrowAssertionError() {
	if t.cheatTracer == nil {
		return
	}
	t.cheatTracer.ThrowAssertionError()
}

// Head returns the head of the chain (the latest block).
func (t *TestChain) Head() *types.Block {
	return t.blocks[len(t.blocks)-1]
}

// HeadBlockNumber returns the test chain head's block number, where zero is the genesis block.
func (t *TestChain) HeadBlockNumber() uint64 {
	return t.Head().Header.Number.Uint64()
}

// BlockFromNumber obtains the block with the provided block number from the current chain. If the block is not found,
// we return an error with an empty block. Thus, the block must be committed to the chain to be retrieved.
func (t *TestChain) BlockFromNumber(blockNumber uint64) (*types.Block, error) {
	// Check to see if we have the block in our committed blocks.
	for _, block := range t.blocks {
		if block.Header.Number.Uint64() == blockNumber {
			return block, nil
		}
	}

	// TODO: In the future, we can reintroduce spoofing a block instead of throwing an error.

	// We cannot find the block, so return an error with an empty block.
	return nil, fmt.Errorf("could not find block with block number %v", blockNumber)
}

// BlockHashFromNumber returns a block hash for a given block number. If the block doesn't exist, because it wasn't committed,
// we return an error with an empty hash. Thus, the block must be committed to the chain to be retrieved.
func (t *TestChain) BlockHashFromNumber(blockNumber uint64) (common.Hash, error) {
	// Obtain the block from the chain if it exists
	block, err := t.BlockFromNumber(blockNumber)
	if err != nil {
		return common.Hash{}, err
	}

	// Return the block hash
	return block.Hash, nil
}

// StateFromRoot obtains a state from a given state root hash.
// Returns the state, or an error if one occurred.
func (t *TestChain) StateFromRoot(root common.Hash) (types.ChainStateDB, error) {
	// Load our state from the database
	stateDB, err := t.stateFactory.New(root, t.stateDatabase)
	if err != nil {
		return nil, err
	}
	return stateDB, nil
}

// StateRootAfterBlockNumber obtains the Ethereum world state root hash after processing all transactions in the
// provided block number. If the block doesn't exist, because it wasn't committed,
// we return an error with an empty state root hash. Thus, the block must be committed to the chain.
func (t *TestChain) StateRootAfterBlockNumber(blockNumber uint64) (common.Hash, error) {
	// Obtain the block from the chain if it exists
	block, err := t.BlockFromNumber(blockNumber)
	if err != nil {
		return common.Hash{}, err
	}

	// Return the state root hash
	return block.Header.Root, nil
}

// StateAfterBlockNumber obtains the Ethereum world state after processing all transactions in the provided block
// number. If the block doesn't exist, because it wasn't committed,
// we return an error. Thus, the block must be committed to the chain.
func (t *TestChain) StateAfterBlockNumber(blockNumber uint64) (types.ChainStateDB, error) {
	// Obtain our block's post-execution state root hash
	root, err := t.StateRootAfterBlockNumber(blockNumber)
	if err != nil {
		return nil, err
	}

	// Load our state from the database
	return t.StateFromRoot(root)
}

// executePrankedCall issues a single direct sub-call from sender to target with the given calldata, on behalf of
// the prank(address,address,bytes) cheatcode. Unlike Call, it does not go through core.ApplyMessage:
// it is invoked from inside the cheat code precompile's own Run, which is itself already on the current EVM's call
// stack, so driving it through the normal transaction-dispatch path (which resets the cheat code tracer's frame
// state via OnTxStart) would corrupt the call already in flight. Its state changes are not reverted, matching a
// sub-call made by the test contract directly.
func (t *TestChain) executePrankedCall(sender common.Address, target common.Address, calldata []byte) (bool, []byte) {
	blockContext := newTestChainBlockContext(t, t.Head().Header)

	evm := vm.NewEVM(blockContext, t.state, t.chainConfig, vm.Config{
		NoBaseFee:        true,
		ConfigExtensions: t.vmConfigExtensions,
	})

	returnData, _, err := evm.Call(vm.AccountRef(sender), target, calldata, MAX_UINT_64.Uint64(), uint256.NewInt(0))
	return err == nil, returnData
}

// Call executes msg against the chain's current state and persists any resulting state changes. Callers that need
// isolation (e.g. the test executor, between test iterations) should snapshot State() themselves before calling and
// revert afterward. The returned receipt's Logs are populated from the state's log accumulator; its
// BlockNumber/BlockHash are not meaningful, since this call is never part of a committed block.
func (t *TestChain) Call(msg *core.Message, additionalTracers ...*TestChainTracer) (*core.ExecutionResult, *gethTypes.Receipt, error) {
	// Create our transaction and block context for the vm
	blockContext := newTestChainBlockContext(t, t.Head().Header)

	// Create a new call tracer router that incorporates any additional tracers provided just for this call, while
	// still calling our internal tracers.
	extendedTracerRouter := NewTestChainTracerRouter()
	extendedTracerRouter.AddTracer(t.callTracerRouter.NativeTracer())
	extendedTracerRouter.AddTracers(additionalTracers...)

	// Create our EVM instance.
	evm := vm.NewEVM(blockContext, t.state, t.chainConfig, vm.Config{
		Tracer:           extendedTracerRouter.NativeTracer().Tracer.Hooks,
		NoBaseFee:        true,
		ConfigExtensions: t.vmConfigExtensions,
	})

	// Set our block context and chain config in order for cheatcodes to override what EVM interpreter sees.
	t.pendingBlockContext = &evm.Context
	t.pendingBlockChainConfig = evm.ChainConfig()

	// Create a tx from our msg, for hashing/receipt purposes
	tx := utils.MessageToTransaction(msg)

	if evm.Config.Tracer != nil && evm.Config.Tracer.OnTxStart != nil {
		evm.Config.Tracer.OnTxStart(evm.GetVMContext(), tx, msg.From)
	}

	// Set the tx context so logs emitted during this call are attributed to this tx's hash.
	t.state.SetTxContext(tx.Hash(), 0)

	// Fund the gas pool, so it can execute up to msg.GasLimit.
	gasPool := new(core.GasPool).AddGas(msg.GasLimit)

	// Perform our state transition to obtain the result. We do not revert afterward; callers that need isolation
	// snapshot State() themselves.
	msgResult, err := core.ApplyMessage(evm, msg, gasPool)
	if err != nil {
		return nil, nil, err
	}

	// Gather receipt for OnTxEnd
	receipt := &gethTypes.Receipt{Type: tx.Type()}
	if msgResult.Failed() {
		receipt.Status = gethTypes.ReceiptStatusFailed
	} else {
		receipt.Status = gethTypes.ReceiptStatusSuccessful
	}
	receipt.TxHash = tx.Hash()
	receipt.GasUsed = msgResult.UsedGas
	receipt.Logs = t.state.GetLogs(tx.Hash(), t.Head().Header.Number.Uint64(), t.Head().Hash)
	if tx.To() == nil {
		receipt.ContractAddress = cryptoutils.CreateAddress(msg.From, msg.Nonce)
	}

	if evm.Config.Tracer != nil && evm.Config.Tracer.OnTxEnd != nil {
		evm.Config.Tracer.OnTxEnd(receipt, err)
	}

	return msgResult, receipt, nil
}

