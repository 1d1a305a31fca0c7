package cache

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
)

// TestNonPersistentStateObjectCacheRace tests for race conditions
func TestNonPersistentStateObjectCacheRace(t *testing.T) {
	cache := newNonPersistentStateCache()
	numObjects := 5
	writers := 10
	numWrites := 10_000
	readers := 10
	numReads := 10_000

	var wg sync.WaitGroup
	wg.Add(writers + readers)

	write := func(r *rand.Rand, writesRem int) {
		for writesRem > 0 {
			objId := r.Uint32() % uint32(numObjects)
			addr := common.BytesToAddress([]byte{byte(objId)})
			stateObject := StateObject{
				Nonce: r.Uint64(),
			}
			err := cache.WriteStateObject(addr, stateObject)
			assert.NoError(t, err)
			writesRem--
		}
		wg.Add(-1)
	}

	read := func(r *rand.Rand, readsRem int) {
		for readsRem > 0 {
			objId := r.Uint32() % uint32(numObjects)
			addr := common.BytesToAddress([]byte{byte(objId)})
			_, _ = cache.GetStateObject(addr)
			readsRem--
		}
		wg.Add(-1)
	}

	for i := 0; i < readers; i++ {
		go read(rand.New(rand.NewSource(int64(i))), numReads)
	}

	for i := 0; i < writers; i++ {
		go write(rand.New(rand.NewSource(int64(i))), numWrites)
	}
	wg.Wait()
}

// TestNonPersistentSlotCacheRace tests for race conditions
func TestNonPersistentSlotCacheRace(t *testing.T) {
	cache := newNonPersistentStateCache()
	numContracts := 3
	numObjects := 5
	writers := 10
	numWrites := 10_000
	readers := 10
	numReads := 10_000

	var wg sync.WaitGroup
	wg.Add(writers + readers)

	write := func(r *rand.Rand, writesRem int) {
		for writesRem > 0 {
			addrId := r.Uint32() % uint32(numContracts)
			addr := common.BytesToAddress([]byte{byte(addrId)})

			objId := r.Uint32() % uint32(numObjects)
			objHash := common.BytesToHash([]byte{byte(objId)})

			data := r.Uint32() % 255
			dataHash := common.BytesToHash([]byte{byte(data)})

			err := cache.WriteSlotData(addr, objHash, dataHash)
			assert.NoError(t, err)
			writesRem--
		}
		wg.Add(-1)
	}

	read := func(r *rand.Rand, readsRem int) {
		for readsRem > 0 {
			addrId := r.Uint32() % uint32(numContracts)
			addr := common.BytesToAddress([]byte{byte(addrId)})

			objId := r.Uint32() % uint32(numObjects)
			objHash := common.BytesToHash([]byte{byte(objId)})
			_, _ = cache.GetSlotData(addr, objHash)
			readsRem--
		}
		wg.Add(-1)
	}

	for i := 0; i < readers; i++ {
		go read(rand.New(rand.NewSource(int64(i))), numReads)
	}

	for i := 0; i < writers; i++ {
		go write(rand.New(rand.NewSource(int64(i))), numWrites)
	}
	wg.Wait()
}
