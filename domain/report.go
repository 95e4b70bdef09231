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

package domain

// Operation is the closed set of wire-level report operations from §6.
type Operation uint32

const (
	OpProcessTreeCompleted Operation = iota
	OpProcessExit
	OpProcessExec
	OpChildSpawned
	OpFileOpen
	OpFileRead
	OpFileWrite
	OpFileProbe
	OpFileEnumerate
	OpDirCreate
	OpDirDelete
	OpFileDelete
	OpSymlinkCreate
	OpMoveSource
	OpMoveDest
	OpLinkSource
	OpLinkDest
	OpCopySource
	OpCopyDest
	OpReparsePointTarget
	OpChangedReadWriteToReadAccess
)

var operationNames = map[Operation]string{
	OpProcessTreeCompleted:         "ProcessTreeCompleted",
	OpProcessExit:                  "ProcessExit",
	OpProcessExec:                  "ProcessExec",
	OpChildSpawned:                 "ChildSpawned",
	OpFileOpen:                     "FileOpen",
	OpFileRead:                     "FileRead",
	OpFileWrite:                    "FileWrite",
	OpFileProbe:                    "FileProbe",
	OpFileEnumerate:                "FileEnumerate",
	OpDirCreate:                    "DirCreate",
	OpDirDelete:                    "DirDelete",
	OpFileDelete:                   "FileDelete",
	OpSymlinkCreate:                "SymlinkCreate",
	OpMoveSource:                   "MoveSource",
	OpMoveDest:                     "MoveDest",
	OpLinkSource:                   "LinkSource",
	OpLinkDest:                     "LinkDest",
	OpCopySource:                   "CopySource",
	OpCopyDest:                     "CopyDest",
	OpReparsePointTarget:           "ReparsePointTarget",
	OpChangedReadWriteToReadAccess: "ChangedReadWriteToReadAccess",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "Unknown"
}

// Status is the outcome recorded on the wire-level report record.
type Status uint32

const (
	StatusAllowed Status = iota
	StatusDenied
	StatusCannotDeterminePolicy
)

func (s Status) String() string {
	switch s {
	case StatusAllowed:
		return "Allowed"
	case StatusDenied:
		return "Denied"
	case StatusCannotDeterminePolicy:
		return "CannotDeterminePolicy"
	default:
		return "Unknown"
	}
}

// ReportStats carries the three timestamps a report accumulates as it
// crosses the pipeline.
type ReportStats struct {
	CreationTS uint64
	EnqueueTS  uint64
	DequeueTS  uint64
}

// Report is the fixed-shape wire-level record described in §6.
type Report struct {
	Operation       Operation
	Pid             uint32
	RootPid         uint32
	ClientPid       uint32
	PipID           uint64
	Requested       RequestedAccess
	Status          Status
	ReportExplicit  bool
	ErrorCode       uint32
	DesiredAccess   uint32
	ShareMode       uint32
	Disposition     uint32
	Flags           uint32
	Path            string
	Stats           ReportStats
}

// EmitMode selects how a report fans out across a client's queues.
type EmitMode int

const (
	// RoundRobin directs the report to exactly one of the client's queues,
	// for throughput.
	RoundRobin EmitMode = iota
	// Broadcast directs the report to every queue belonging to the
	// client. Used for the terminal ProcessTreeCompleted event, which
	// must not be lost by any consumer.
	Broadcast
)

// EmitOutcome is the local result of one emit attempt, distinguishing a
// dedup-skip (not an error) from queue back-pressure.
type EmitOutcome int

const (
	Emitted EmitOutcome = iota
	Skipped
	QueueFull
)

func (o EmitOutcome) String() string {
	switch o {
	case Emitted:
		return "Emitted"
	case Skipped:
		return "Skipped"
	case QueueFull:
		return "QueueFull"
	default:
		return "Unknown"
	}
}

// ReportPipelineIface is the Report Pipeline's external contract (§4.6).
type ReportPipelineIface interface {
	// Emit enqueues report for clientID using the given fan-out mode. A
	// client already in the unrecoverable-failure state gets QueueFull
	// immediately, with no further attempt to enqueue.
	Emit(clientID uint64, report Report, mode EmitMode) (EmitOutcome, error)

	// RegisterClient attaches a client with the given number of queues,
	// each sized queueSizeBytes, and a failure callback invoked exactly
	// once (with ErrReportQueueFull) the first time the client enters the
	// unrecoverable-failure state.
	RegisterClient(clientID uint64, queueCount int, queueSizeBytes int, onFailure func(error)) error

	// UnregisterClient releases a client's queues.
	UnregisterClient(clientID uint64)

	// Drain lets a consumer pull the next report off one of its queues;
	// ok is false if the queue is empty.
	Drain(clientID uint64, queueIndex int) (Report, bool)

	// QueueDepth and ClientCount support operational introspection.
	QueueDepth(clientID uint64, queueIndex int) int
	ClientCount() int
}
