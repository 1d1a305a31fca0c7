package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/crytic/forge-core/compilation/platforms"
	"github.com/crytic/forge-core/utils"
	"github.com/crytic/forge-core/utils/testutils"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core"
	"github.com/crytic/medusa-geth/core/types"
	"github.com/stretchr/testify/assert"
)

// createChain creates a TestChain used for unit testing purposes and returns the chain along with its initially
// funded accounts at genesis.
func createChain(t *testing.T) (*TestChain, []common.Address) {
	// Create our list of senders
	senders, err := utils.HexStringsToAddresses([]string{
		"0x0707",
		"0x0708",
		"0x0709",
	})
	assert.NoError(t, err)

	// NOTE: Sharing GenesisAlloc between nodes will result in some accounts not being funded for some reason.
	genesisAlloc := make(types.GenesisAlloc)

	// Fund all of our sender addresses in the genesis block
	initBalance := new(big.Int).Div(abi.MaxInt256, big.NewInt(2))
	for _, sender := range senders {
		genesisAlloc[sender] = types.Account{
			Balance: initBalance,
		}
	}

	// Create a test chain with a default test chain configuration
	chain, err := NewTestChain(context.Background(), genesisAlloc, nil)
	assert.NoError(t, err)

	return chain, senders
}

// deployMessage builds a core.Message which deploys data (init bytecode, already packed with constructor args)
// from sender.
func deployMessage(chain *TestChain, sender common.Address, data []byte) *core.Message {
	return &core.Message{
		To:        nil,
		From:      sender,
		Nonce:     chain.State().GetNonce(sender),
		Value:     big.NewInt(0),
		GasLimit:  30_000_000,
		GasPrice:  big.NewInt(1),
		GasFeeCap: big.NewInt(0),
		GasTipCap: big.NewInt(0),
		Data:      data,
	}
}

// callMessage builds a core.Message which calls data against to from sender, against the chain's current nonce.
func callMessage(chain *TestChain, sender common.Address, to common.Address, data []byte) *core.Message {
	return &core.Message{
		To:        &to,
		From:      sender,
		Nonce:     chain.State().GetNonce(sender),
		Value:     big.NewInt(0),
		GasLimit:  30_000_000,
		GasPrice:  big.NewInt(1),
		GasFeeCap: big.NewInt(0),
		GasTipCap: big.NewInt(0),
		Data:      data,
	}
}

// TestChainCallPersistsStateAcrossCalls deploys a contract through Call and verifies that a subsequent Call which
// mutates its storage is visible to a Call made afterward, since Call (unlike the removed pending-block pipeline)
// persists state directly against the chain's current StateDB rather than requiring a commit step.
func TestChainCallPersistsStateAcrossCalls(t *testing.T) {
	contractPath := testutils.CopyToTestDirectory(t, "testdata/contracts/deployment_single.sol")

	testutils.ExecuteInDirectory(t, contractPath, func() {
		cryticCompile := platforms.NewCryticCompileCompilationConfig(contractPath)
		compilations, _, err := cryticCompile.Compile()
		assert.NoError(t, err)

		contract := compilations[0].Sources[contractPath].Contracts["DeploymentSingle"]

		chain, senders := createChain(t)

		_, receipt, err := chain.Call(deployMessage(chain, senders[0], contract.InitBytecode))
		assert.NoError(t, err)
		assert.EqualValues(t, types.ReceiptStatusSuccessful, receipt.Status)
		contractAddress := receipt.ContractAddress

		valueSlot := common.Hash{}
		value := chain.State().GetState(contractAddress, valueSlot).Big()
		assert.EqualValues(t, big.NewInt(1), value)

		incrementData, err := contract.Abi.Pack("increment")
		assert.NoError(t, err)

		_, receipt, err = chain.Call(callMessage(chain, senders[0], contractAddress, incrementData))
		assert.NoError(t, err)
		assert.EqualValues(t, types.ReceiptStatusSuccessful, receipt.Status)

		value = chain.State().GetState(contractAddress, valueSlot).Big()
		assert.EqualValues(t, big.NewInt(2), value)
	})
}

// TestChainSnapshotRevertRestoresStateAndIsReusable exercises the snapshot/revert isolation the Executor relies on
// between test iterations: it deploys a contract, snapshots, mutates state, reverts, and verifies the mutation was
// undone. It repeats the cycle a second time to guard against reverting to a snapshot id that was already consumed
// (see the fix in Executor.RunTest, which re-snapshots immediately after every revert).
func TestChainSnapshotRevertRestoresStateAndIsReusable(t *testing.T) {
	contractPath := testutils.CopyToTestDirectory(t, "testdata/contracts/deployment_single.sol")

	testutils.ExecuteInDirectory(t, contractPath, func() {
		cryticCompile := platforms.NewCryticCompileCompilationConfig(contractPath)
		compilations, _, err := cryticCompile.Compile()
		assert.NoError(t, err)

		contract := compilations[0].Sources[contractPath].Contracts["DeploymentSingle"]

		chain, senders := createChain(t)

		_, receipt, err := chain.Call(deployMessage(chain, senders[0], contract.InitBytecode))
		assert.NoError(t, err)
		contractAddress := receipt.ContractAddress

		incrementData, err := contract.Abi.Pack("increment")
		assert.NoError(t, err)

		valueSlot := common.Hash{}

		for i := 0; i < 3; i++ {
			valueBefore := chain.State().GetState(contractAddress, valueSlot).Big()

			snapshot := chain.State().Snapshot()
			_, _, err = chain.Call(callMessage(chain, senders[0], contractAddress, incrementData))
			assert.NoError(t, err)

			valueAfterCall := chain.State().GetState(contractAddress, valueSlot).Big()
			assert.EqualValues(t, new(big.Int).Add(valueBefore, big.NewInt(1)), valueAfterCall)

			chain.State().RevertToSnapshot(snapshot)

			valueAfterRevert := chain.State().GetState(contractAddress, valueSlot).Big()
			assert.EqualValues(t, valueBefore, valueAfterRevert)
		}
	})
}

// TestChainDeploymentWithConstructorArgs deploys a contract that takes constructor arguments through Call and
// verifies the resulting storage matches the arguments supplied.
func TestChainDeploymentWithConstructorArgs(t *testing.T) {
	contractPath := testutils.CopyToTestDirectory(t, "testdata/contracts/deployment_with_args.sol")

	testutils.ExecuteInDirectory(t, contractPath, func() {
		cryticCompile := platforms.NewCryticCompileCompilationConfig(contractPath)
		compilations, _, err := cryticCompile.Compile()
		assert.NoError(t, err)

		contract := compilations[0].Sources[contractPath].Contracts["DeploymentWithArgs"]

		chain, senders := createChain(t)

		x := big.NewInt(1234567890)
		y := []byte("Test deployment with arguments!!")

		msgData, err := contract.GetDeploymentMessageData([]any{x, y})
		assert.NoError(t, err)

		_, receipt, err := chain.Call(deployMessage(chain, senders[0], msgData))
		assert.NoError(t, err)
		assert.EqualValues(t, types.ReceiptStatusSuccessful, receipt.Status)
		contractAddress := receipt.ContractAddress

		contractX := chain.State().GetState(contractAddress, common.Hash{}).Big()
		assert.EqualValues(t, x, contractX)

		// The first word of a dynamic bytes array is stored at keccak256(uint256(slot)), where slot is 1 here.
		slotY := common.HexToHash("0xb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf6")
		contractY := chain.State().GetState(contractAddress, slotY).Bytes()
		assert.EqualValues(t, y, contractY)
	})
}

// TestChainCheatCodeContractsInstalled verifies that enabling cheatcodes registers the cheat code precompiles as
// addresses with code in genesis, queryable through CheatCodeContracts.
func TestChainCheatCodeContractsInstalled(t *testing.T) {
	chain, _ := createChain(t)

	cheatContracts := chain.CheatCodeContracts()
	assert.NotEmpty(t, cheatContracts)

	for address := range cheatContracts {
		code := chain.State().GetCode(address)
		assert.NotEmpty(t, code, "cheat code contract at %v has no code installed", address)
	}
}

// TestChainLabels verifies that the Labels map, used by execution tracing to render addresses by name, can be set
// and read back.
func TestChainLabels(t *testing.T) {
	chain, senders := createChain(t)

	assert.Empty(t, chain.Labels[senders[0]])
	chain.Labels[senders[0]] = "Alice"
	assert.Equal(t, "Alice", chain.Labels[senders[0]])
}
