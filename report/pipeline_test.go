//
// Copyright 2019-2020 Nestybox, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nestybox/sandbox-core/domain"
)

func TestEmitRoundRobinPreservesPerQueueOrder(t *testing.T) {
	p := New()
	require.NoError(t, p.RegisterClient(1, 2, reportSize*4, nil))

	for i := 0; i < 4; i++ {
		outcome, err := p.Emit(1, domain.Report{Operation: domain.Operation(i)}, domain.RoundRobin)
		require.NoError(t, err)
		require.Equal(t, domain.Emitted, outcome)
	}

	var seenQ0, seenQ1 []domain.Operation
	for {
		r, ok := p.Drain(1, 0)
		if !ok {
			break
		}
		seenQ0 = append(seenQ0, r.Operation)
	}
	for {
		r, ok := p.Drain(1, 1)
		if !ok {
			break
		}
		seenQ1 = append(seenQ1, r.Operation)
	}

	require.True(t, sortedAscending(seenQ0))
	require.True(t, sortedAscending(seenQ1))
}

func sortedAscending(ops []domain.Operation) bool {
	for i := 1; i < len(ops); i++ {
		if ops[i] <= ops[i-1] {
			return false
		}
	}
	return true
}

func TestEmitBroadcastReachesEveryQueue(t *testing.T) {
	p := New()
	require.NoError(t, p.RegisterClient(1, 3, reportSize*4, nil))

	outcome, err := p.Emit(1, domain.Report{Operation: domain.OpProcessTreeCompleted}, domain.Broadcast)
	require.NoError(t, err)
	require.Equal(t, domain.Emitted, outcome)

	for q := 0; q < 3; q++ {
		r, ok := p.Drain(1, q)
		require.True(t, ok)
		require.Equal(t, domain.OpProcessTreeCompleted, r.Operation)
	}
}

func TestEmitQueueFullLatchesUnrecoverableFailure(t *testing.T) {
	p := New()
	var failures int
	require.NoError(t, p.RegisterClient(1, 1, reportSize, func(err error) { failures++ }))

	outcome, err := p.Emit(1, domain.Report{}, domain.RoundRobin)
	require.NoError(t, err)
	require.Equal(t, domain.Emitted, outcome)

	// Queue capacity is 1; the second emit overflows it.
	outcome, err = p.Emit(1, domain.Report{}, domain.RoundRobin)
	require.Error(t, err)
	require.Equal(t, domain.QueueFull, outcome)
	require.Equal(t, 1, failures)

	// A further emit fails immediately, without attempting to push, and
	// does not invoke the failure callback a second time.
	outcome, err = p.Emit(1, domain.Report{}, domain.RoundRobin)
	require.Equal(t, domain.QueueFull, outcome)
	require.Error(t, err)
	require.Equal(t, 1, failures)
}

func TestQueueDepthAndClientCount(t *testing.T) {
	p := New()
	require.Equal(t, 0, p.ClientCount())
	require.NoError(t, p.RegisterClient(1, 1, reportSize*2, nil))
	require.Equal(t, 1, p.ClientCount())

	_, err := p.Emit(1, domain.Report{}, domain.RoundRobin)
	require.NoError(t, err)
	require.Equal(t, 1, p.QueueDepth(1, 0))

	p.UnregisterClient(1)
	require.Equal(t, 0, p.ClientCount())
}

func TestRegisterDuplicateClientFails(t *testing.T) {
	p := New()
	require.NoError(t, p.RegisterClient(1, 1, reportSize, nil))
	err := p.RegisterClient(1, 1, reportSize, nil)
	require.Error(t, err)
}
