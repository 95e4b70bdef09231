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

package process

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/nestybox/sandbox-core/domain"
	"github.com/nestybox/sandbox-core/logfmt"
)

// Registry is the production ProcessRegistryIface: a concurrent pid
// table, reader-concurrent / writer-exclusive per §5's shared-resource
// policy.
type Registry struct {
	mu      sync.RWMutex
	records map[uint32]*record

	reports domain.ReportPipelineIface
}

var _ domain.ProcessRegistryIface = (*Registry)(nil)

// New returns an empty Process Registry. reports receives the
// ChildSpawned/ProcessExec/ProcessExit/ProcessTreeCompleted reports the
// lifecycle operations emit (§4.5).
func New(reports domain.ReportPipelineIface) *Registry {
	return &Registry{
		records: make(map[uint32]*record),
		reports: reports,
	}
}

func (r *Registry) TrackRootProcess(clientID uint64, pid uint32, pipID uint64, manifest domain.ManifestIface) (domain.ProcessRecordIface, error) {
	r.mu.Lock()
	if _, exists := r.records[pid]; exists {
		// Nested clients can reuse a pid; untrack the stale entry first.
		delete(r.records, pid)
	}
	root := newRoot(clientID, pid, pipID, manifest)
	r.records[pid] = root
	r.mu.Unlock()

	logrus.Debugf("Process registry: tracked root pid %s for client %s",
		logfmt.Pid(pid), logfmt.ClientID(clientID))
	return root, nil
}

func (r *Registry) TrackChildProcess(childPid, parentPid uint32) error {
	r.mu.Lock()
	parent, ok := r.records[parentPid]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	child := newChild(childPid, parent.root)
	r.records[childPid] = child
	r.mu.Unlock()

	atomic.AddInt32(&parent.root.treeCount, 1)

	logrus.Debugf("Process registry: tracked child pid %s of parent %s",
		logfmt.Pid(childPid), logfmt.Pid(parentPid))

	_, err := r.reports.Emit(child.clientID, domain.Report{
		Operation: domain.OpChildSpawned,
		Pid:       childPid,
		RootPid:   child.root.pid,
		PipID:     child.pipID,
		Status:    domain.StatusAllowed,
	}, domain.RoundRobin)
	return err
}

func (r *Registry) HandleExec(pid uint32, imagePath string) error {
	r.mu.RLock()
	rec, ok := r.records[pid]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	_, err := r.reports.Emit(rec.clientID, domain.Report{
		Operation: domain.OpProcessExec,
		Pid:       pid,
		RootPid:   rec.root.pid,
		PipID:     rec.pipID,
		Path:      imagePath,
		Status:    domain.StatusAllowed,
	}, domain.RoundRobin)
	return err
}

func (r *Registry) HandleFork(parentPid, childPid uint32) error {
	return r.TrackChildProcess(childPid, parentPid)
}

func (r *Registry) HandleExit(pid uint32) error {
	r.mu.Lock()
	rec, ok := r.records[pid]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.records, pid)
	r.mu.Unlock()

	if _, err := r.reports.Emit(rec.clientID, domain.Report{
		Operation: domain.OpProcessExit,
		Pid:       pid,
		RootPid:   rec.root.pid,
		PipID:     rec.pipID,
		Status:    domain.StatusAllowed,
	}, domain.RoundRobin); err != nil {
		return err
	}

	remaining := atomic.AddInt32(&rec.root.treeCount, -1)
	if remaining > 0 {
		return nil
	}

	logrus.Debugf("Process registry: tree rooted at pid %s completed", logfmt.Pid(rec.root.pid))

	_, err := r.reports.Emit(rec.root.clientID, domain.Report{
		Operation: domain.OpProcessTreeCompleted,
		Pid:       rec.root.pid,
		RootPid:   rec.root.pid,
		PipID:     rec.root.pipID,
		Status:    domain.StatusAllowed,
	}, domain.Broadcast)
	return err
}

func (r *Registry) Lookup(pid uint32) (domain.ProcessRecordIface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[pid]
	return rec, ok
}

func (r *Registry) Snapshot() []domain.ProcessRecordIface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ProcessRecordIface, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}
