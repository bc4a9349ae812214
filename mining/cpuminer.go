// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"encoding/binary"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/dusklabs/duskd/blockchain/standalone"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/pow"
)

// Result is what a successful solve returns: the nonce that satisfied the
// template's difficulty and the resulting PoW hash.
type Result struct {
	Nonce [32]byte
	Hash  chainhash.Hash
}

// CPUSolver searches a Template's nonce space across a fixed pool of
// goroutines, each striding by the worker count so no two workers ever test
// the same nonce. It mirrors the worker-pool/stride/cancel-channel shape of
// a plain CPU miner, adapted from cequihash's callback-driven solve loop to
// pure Go goroutines since there is no equivalent solver to call into for
// this memory-hard hash.
type CPUSolver struct {
	workers int
}

// NewCPUSolver creates a solver with the given worker count. A count <= 0
// uses runtime.GOMAXPROCS(0).
func NewCPUSolver(workers int) *CPUSolver {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUSolver{workers: workers}
}

// Solve searches for a nonce satisfying template's difficulty using
// fast-mode hashing over a dataset generated once for the template's seed.
// It blocks until a result is found or stop is closed, in which case it
// returns false.
func (s *CPUSolver) Solve(template *Template, params chaincfg.PoWParams, stop <-chan struct{}) (Result, bool) {
	dataset := datasetFor(template, params)

	var found atomic.Bool
	resultCh := make(chan Result, 1)
	var wg sync.WaitGroup

	for workerID := 0; workerID < s.workers; workerID++ {
		wg.Add(1)
		go s.mine(workerID, template, params, dataset, &found, resultCh, stop, &wg)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result, ok := <-resultCh
	return result, ok
}

// mine is one worker's search loop: try nonce, check the target, and if it
// misses, advance by s.workers so workers partition the nonce space evenly.
func (s *CPUSolver) mine(workerID int, template *Template, params chaincfg.PoWParams, dataset []pow.Item, found *atomic.Bool, resultCh chan<- Result, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	var nonce [32]byte
	binary.LittleEndian.PutUint64(nonce[24:], uint64(workerID))
	stride := uint64(s.workers)

	for {
		select {
		case <-stop:
			return
		default:
		}
		if found.Load() {
			return
		}

		input := pow.HeaderInput([32]byte(template.HeaderHash), nonce)
		hashBytes := pow.FastHash(input, dataset, params)
		hash := chainhash.Hash(hashBytes)

		if standalone.CheckProofOfWork(&hash, template.Difficulty) {
			if found.CompareAndSwap(false, true) {
				resultCh <- Result{Nonce: nonce, Hash: hash}
			}
			return
		}

		counter := binary.LittleEndian.Uint64(nonce[24:])
		binary.LittleEndian.PutUint64(nonce[24:], counter+stride)
	}
}
