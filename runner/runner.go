package runner

import (
	"context"
	"sort"
	"sync"

	compilationTypes "github.com/crytic/forge-core/compilation/types"
	forgeerrors "github.com/crytic/forge-core/errors"
	"github.com/crytic/forge-core/executor"
	"github.com/crytic/forge-core/fuzzdriver"
	"github.com/crytic/forge-core/logging"
	"github.com/crytic/forge-core/runnerconfig"
	"github.com/crytic/forge-core/utils"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
)

// logger is the runner package's sub-logger under the shared global logger, following the convention every other
// package in this module uses to tag its log output.
var logger = logging.GlobalLogger.NewSubLogger("module", "runner")

// Runner schedules every discovered test contract across a bounded worker pool and collects their results into a
// single Report. Each contract gets its own Executor (and therefore its own backend instance), so a contract's
// setUp() and the state its test functions build on never leaks into another contract's run; test functions within
// one contract always run sequentially against that one backend, since they share the state setUp() established.
type Runner struct {
	cfg *runnerconfig.Config
}

// New creates a Runner from cfg.
func New(cfg *runnerconfig.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run discovers every contract with test functions in compilation, schedules up to cfg.Workers of them concurrently,
// and returns once every scheduled contract has finished or ctx is cancelled. Results are returned grouped by
// contract in discovery order (lexicographic by source path, then contract name), regardless of the order in which
// workers actually finished running.
func (r *Runner) Run(ctx context.Context, compilation *compilationTypes.Compilation) (*Report, error) {
	filter, err := newTestFilter(r.cfg.Filter)
	if err != nil {
		return nil, err
	}

	// Resolve which libraries each contract's bytecode still references by placeholder before we copy contracts
	// out of the compilation, since DiscoverContracts/DiscoverLibraries take a snapshot of each contract's fields.
	compilationTypes.ResolveLibraryPlaceholders([]compilationTypes.Compilation{*compilation})

	contracts := executor.DiscoverContracts(compilation)
	sort.Slice(contracts, func(i, j int) bool {
		if contracts[i].SourcePath != contracts[j].SourcePath {
			return contracts[i].SourcePath < contracts[j].SourcePath
		}
		return contracts[i].Name < contracts[j].Name
	})

	libraries := executor.DiscoverLibraries(compilation)
	librariesByName := make(map[string]*executor.ContractUnderTest, len(libraries))
	for _, library := range libraries {
		librariesByName[library.Name] = library
	}

	compiledContracts := make(map[string]*compilationTypes.CompiledContract, len(contracts)+len(libraries))
	for _, contract := range contracts {
		compiledContracts[contract.Name] = contract.Compiled
	}
	for _, library := range libraries {
		compiledContracts[library.Name] = library.Compiled
	}

	perContract := make([][]*executor.TestResult, len(contracts))
	cancelled := false

	// We bound concurrency with a channel-backed semaphore: a goroutine per contract blocks on the channel until a slot frees up, and we wait for every slot to drain
	// before reporting results, so result ordering doesn't depend on which worker happened to finish first.
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	reserve := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, contract := range contracts {
		if utils.CheckContextDone(ctx) {
			cancelled = true
			break
		}

		reserve <- struct{}{}
		wg.Add(1)

		go func(index int, contract *executor.ContractUnderTest) {
			defer wg.Done()
			defer func() { <-reserve }()

			perContract[index] = r.runContract(ctx, contract, filter, compiledContracts, librariesByName)
		}(i, contract)
	}

	wg.Wait()

	report := &Report{}
	for _, results := range perContract {
		report.Results = append(report.Results, results...)
	}
	if cancelled || utils.CheckContextDone(ctx) {
		report.Cancelled = true
	}
	return report, nil
}

// runContract drives one contract's full lifecycle: deploy any libraries it references, deploy the contract itself,
// run setUp(), then every matching test function in lexicographic order, sequentially against the same backend, one
// Executor instance per contract.
func (r *Runner) runContract(ctx context.Context, contract *executor.ContractUnderTest, filter *testFilter, compiledContracts map[string]*compilationTypes.CompiledContract, librariesByName map[string]*executor.ContractUnderTest) []*executor.TestResult {
	methods := make([]abi.Method, 0)
	for _, method := range executor.TestMethods(contract.Compiled.Abi) {
		if filter.Matches(contract, method) {
			methods = append(methods, method)
		}
	}
	if len(methods) == 0 {
		return nil
	}

	exec, err := executor.NewExecutor(ctx, r.cfg, compiledContracts)
	if err != nil {
		logger.Error("failed to create backend for ", contract.Name, ": ", err)
		return []*executor.TestResult{executor.Fail(contract.Name, "setUp", "", executor.TestKindStandard, err.Error(), 0, nil, nil)}
	}
	defer exec.Close()

	deployedLibraries, err := deployLibraries(exec, contract, librariesByName)
	if err != nil {
		return []*executor.TestResult{executor.Fail(contract.Name, "setUp", "", executor.TestKindStandard, err.Error(), 0, nil, nil)}
	}

	if err := exec.Deploy(contract, nil, deployedLibraries); err != nil {
		return []*executor.TestResult{executor.Fail(contract.Name, "setUp", "", executor.TestKindStandard, err.Error(), 0, nil, nil)}
	}

	driver := fuzzdriver.New(r.cfg)
	results := make([]*executor.TestResult, 0, len(methods))
	for _, method := range methods {
		if utils.CheckContextDone(ctx) {
			results = append(results, executor.Skip(contract.Name, method.Name, method.Sig(), kindOf(method), "run cancelled"))
			continue
		}

		if executor.IsFuzzTest(method) {
			results = append(results, driver.Run(exec, method))
		} else {
			results = append(results, exec.RunTest(method, nil))
		}
	}
	return results
}

// deployLibraries walks contract's library dependency graph (following libraries-of-libraries transitively),
// topologically orders it with compilationTypes.GetDeploymentOrder so a library is always deployed after every
// library it itself depends on, deploys each one on exec's backend, and returns the short-name-to-address map
// Executor.Deploy needs to link them into the contract's bytecode.
func deployLibraries(exec *executor.Executor, contract *executor.ContractUnderTest, librariesByName map[string]*executor.ContractUnderTest) (map[string]common.Address, error) {
	if len(contract.Compiled.LibraryPlaceholders) == 0 {
		return nil, nil
	}

	required := make(map[string]*executor.ContractUnderTest)
	dependencies := map[string][]any{contract.Name: dependencyNames(contract.Compiled.LibraryPlaceholders)}
	queue := dependencies[contract.Name]

	for len(queue) > 0 {
		nameAny := queue[0]
		queue = queue[1:]

		name, ok := nameAny.(string)
		if !ok || name == "" || required[name] != nil {
			continue
		}

		library, found := librariesByName[name]
		if !found {
			return nil, forgeerrors.Newf(forgeerrors.DeployFailed, "contract %s references unresolved library %s", contract.Name, name)
		}

		required[name] = library
		deps := dependencyNames(library.Compiled.LibraryPlaceholders)
		dependencies[name] = deps
		queue = append(queue, deps...)
	}

	order, err := compilationTypes.GetDeploymentOrder(dependencies)
	if err != nil {
		return nil, forgeerrors.Wrap(forgeerrors.DeployFailed, err, "failed to order library deployment for %s", contract.Name)
	}

	deployed := make(map[string]common.Address, len(required))
	for _, name := range order {
		library, ok := required[name]
		if !ok {
			continue
		}

		address, err := exec.DeployLibrary(library, deployed)
		if err != nil {
			return nil, forgeerrors.Wrap(forgeerrors.DeployFailed, err, "failed to deploy library %s for %s", name, contract.Name)
		}
		deployed[name] = address
	}
	return deployed, nil
}

// dependencyNames extracts the library short names recorded so far in a LibraryPlaceholders map, skipping any
// placeholder that hasn't been resolved to a library name yet.
func dependencyNames(placeholders map[string]any) []any {
	names := make([]any, 0, len(placeholders))
	for _, nameAny := range placeholders {
		if name, ok := nameAny.(string); ok && name != "" {
			names = append(names, nameAny)
		}
	}
	return names
}

func kindOf(method abi.Method) executor.TestKind {
	if executor.IsFuzzTest(method) {
		return executor.TestKindFuzz
	}
	return executor.TestKindStandard
}
