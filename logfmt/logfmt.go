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

// Package logfmt provides small Stringer wrappers for identifiers that show
// up constantly in log lines (pids, client ids, pip ids), so every package
// renders them the same way instead of each call-site picking its own
// fmt.Sprintf verb.
package logfmt

import "strconv"

// Pid formats a process id for log output.
type Pid uint32

func (p Pid) String() string {
	return "pid=" + strconv.FormatUint(uint64(p), 10)
}

// ClientID formats the outer-process client identifier.
type ClientID uint64

func (c ClientID) String() string {
	return "client=" + strconv.FormatUint(uint64(c), 10)
}

// PipID formats the opaque build-step identifier.
type PipID uint64

func (p PipID) String() string {
	return "pip=" + strconv.FormatUint(uint64(p), 10)
}
