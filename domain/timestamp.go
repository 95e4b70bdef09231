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

import "time"

// NewInputTimestamp is the canonical "new input" timestamp §6's
// timestamp normalization substitutes for an input file's real
// modification time: a fixed instant, fairly far in the past, but late
// enough that (now - file time) staying positive is never a latent
// assumption a build tool can get away with violating. February 2, 2002,
// 02:02:02 UTC — picked for the same reason upstream picked it: it has a
// lot of 2s in it.
var NewInputTimestamp = time.Date(2002, time.February, 2, 2, 2, 2, 0, time.UTC)
