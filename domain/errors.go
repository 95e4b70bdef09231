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

import (
	grpcCodes "google.golang.org/grpc/codes"
	grpcStatus "google.golang.org/grpc/status"
)

// The error taxonomy from §7, each given a stable gRPC status code. No
// RPC transport is implied or required — codes and status are used
// purely as a structured error vocabulary.

// ErrManifestInvalid reports that a Manifest failed structural checks at
// root-process creation; the root is rejected and never tracked.
func ErrManifestInvalid(pid uint32, cause error) error {
	return grpcStatus.Errorf(grpcCodes.InvalidArgument,
		"manifest invalid for pid %d: %v", pid, cause)
}

// ErrReparseResolutionFailed reports that symlink-chain resolution could
// not complete (depth exceeded or the OS primitive failed); the affected
// path is policy-indeterminate.
func ErrReparseResolutionFailed(path string, cause error) error {
	return grpcStatus.Errorf(grpcCodes.Unavailable,
		"reparse resolution failed for %q: %v", path, cause)
}

// ErrReportQueueFull reports that a client's report queues are
// unrecoverably full. Hook calls for that client fail open from then on.
var ErrReportQueueFull = grpcStatus.Error(grpcCodes.ResourceExhausted, "report queue full")

// ErrProcessNotTracked reports that a hook fired for a pid the registry
// has no record of; callers must treat this as a no-op, not a failure.
func ErrProcessNotTracked(pid uint32) error {
	return grpcStatus.Errorf(grpcCodes.NotFound, "process %d not tracked", pid)
}

// ErrClientAlreadyRegistered reports a duplicate client registration.
func ErrClientAlreadyRegistered(clientID uint64) error {
	return grpcStatus.Errorf(grpcCodes.AlreadyExists, "client %d already registered", clientID)
}

// ErrClientNotFound reports that a report-pipeline operation named a
// clientID with no registered queues.
func ErrClientNotFound(clientID uint64) error {
	return grpcStatus.Errorf(grpcCodes.NotFound, "client %d not registered", clientID)
}

// ErrHookInternal wraps an unexpected internal state (assertion-like
// failure). In debug builds callers may choose to panic on it; in release
// builds it is logged and the hook fails open.
func ErrHookInternal(msg string) error {
	return grpcStatus.Error(grpcCodes.Internal, msg)
}

// IsNotFound reports whether err is (or wraps) a NotFound status.
func IsNotFound(err error) bool {
	return grpcStatus.Code(err) == grpcCodes.NotFound
}
