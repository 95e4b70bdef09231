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

// Package report implements the Report Pipeline (§4.6): bounded
// single-producer-multiple-consumer queues per client, round-robin or
// broadcast fan-out, and the one-shot unrecoverable-failure latch on
// back-pressure: an RWMutex-guarded map keyed by an external id, logged
// with logrus and logfmt-wrapped identifiers.
package report

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/nestybox/sandbox-core/domain"
	"github.com/nestybox/sandbox-core/logfmt"
)

// queue is one bounded SPMC ring buffer belonging to a client.
type queue struct {
	mu   sync.Mutex
	buf  []domain.Report
	head int
	size int
}

func newQueue(capacity int) *queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &queue{buf: make([]domain.Report, capacity)}
}

func (q *queue) tryPush(r domain.Report) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == len(q.buf) {
		return false
	}
	tail := (q.head + q.size) % len(q.buf)
	q.buf[tail] = r
	q.size++
	return true
}

func (q *queue) pop() (domain.Report, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return domain.Report{}, false
	}
	r := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return r, true
}

func (q *queue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// client owns every queue one attached consumer drains, plus the
// unrecoverable-failure latch §4.6 requires.
type client struct {
	queues    []*queue
	next      uint64 // round-robin cursor
	failed    int32  // atomic bool
	onFailure func(error)
	failOnce  sync.Once
}

// Pipeline is the production ReportPipelineIface.
type Pipeline struct {
	mu      sync.RWMutex
	clients map[uint64]*client
}

var _ domain.ReportPipelineIface = (*Pipeline)(nil)

// New returns an empty Report Pipeline.
func New() *Pipeline {
	return &Pipeline{clients: make(map[uint64]*client)}
}

func (p *Pipeline) RegisterClient(clientID uint64, queueCount int, queueSizeBytes int, onFailure func(error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.clients[clientID]; ok {
		return domain.ErrClientAlreadyRegistered(clientID)
	}

	capacity := queueSizeBytes / reportSize
	queues := make([]*queue, queueCount)
	for i := range queues {
		queues[i] = newQueue(capacity)
	}

	p.clients[clientID] = &client{queues: queues, onFailure: onFailure}

	logrus.Debugf("Report pipeline: client %s registered with %d queues",
		logfmt.ClientID(clientID), queueCount)
	return nil
}

func (p *Pipeline) UnregisterClient(clientID uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, clientID)
}

// reportSize approximates sizeof(Report) on the wire (§6's fixed-size
// record), used only to translate a byte budget into a queue-entry count.
const reportSize = 512

func (p *Pipeline) lookupClient(clientID uint64) (*client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.clients[clientID]
	return c, ok
}

// Emit implements §4.6. A client already latched into unrecoverable
// failure returns QueueFull immediately, with no further push attempted.
func (p *Pipeline) Emit(clientID uint64, r domain.Report, mode domain.EmitMode) (domain.EmitOutcome, error) {
	c, ok := p.lookupClient(clientID)
	if !ok {
		return domain.QueueFull, domain.ErrClientNotFound(clientID)
	}

	if atomic.LoadInt32(&c.failed) == 1 {
		return domain.QueueFull, domain.ErrReportQueueFull
	}

	var pushed bool
	switch mode {
	case domain.Broadcast:
		pushed = true
		for _, q := range c.queues {
			if !q.tryPush(r) {
				pushed = false
				break
			}
		}
		if !pushed {
			// Partial broadcast delivery is worse than none for the
			// terminal event's must-not-be-lost guarantee — latch failure
			// rather than leave some queues with it and others without.
			p.latchFailure(c)
			return domain.QueueFull, domain.ErrReportQueueFull
		}
	case domain.RoundRobin:
		idx := atomic.AddUint64(&c.next, 1) % uint64(len(c.queues))
		if !c.queues[idx].tryPush(r) {
			p.latchFailure(c)
			return domain.QueueFull, domain.ErrReportQueueFull
		}
	}

	return domain.Emitted, nil
}

func (p *Pipeline) latchFailure(c *client) {
	if !atomic.CompareAndSwapInt32(&c.failed, 0, 1) {
		return
	}
	c.failOnce.Do(func() {
		if c.onFailure != nil {
			c.onFailure(domain.ErrReportQueueFull)
		}
	})
}

func (p *Pipeline) Drain(clientID uint64, queueIndex int) (domain.Report, bool) {
	c, ok := p.lookupClient(clientID)
	if !ok || queueIndex < 0 || queueIndex >= len(c.queues) {
		return domain.Report{}, false
	}
	return c.queues[queueIndex].pop()
}

func (p *Pipeline) QueueDepth(clientID uint64, queueIndex int) int {
	c, ok := p.lookupClient(clientID)
	if !ok || queueIndex < 0 || queueIndex >= len(c.queues) {
		return 0
	}
	return c.queues[queueIndex].depth()
}

func (p *Pipeline) ClientCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}
