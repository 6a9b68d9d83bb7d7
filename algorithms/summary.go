//
// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package algorithms

import (
	"bytes"
	"encoding/gob"
)

// Summary is an opaque serialized snapshot of an algorithm's accumulated
// sufficient statistics. It deliberately excludes budget state: merging a
// summary affects what a result is computed from, not how much budget the
// receiving instance has left.
//
// The encoding of Data is owned by the concrete algorithm that produced the
// summary; other algorithm types reject it on Merge.
type Summary struct {
	Data []byte
}

// Empty reports whether the summary carries no data.
func (s *Summary) Empty() bool {
	return s == nil || len(s.Data) == 0
}

// encode gob-encodes a concrete algorithm's summary payload.
func encode(payload any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode gob-decodes a summary payload into the given value.
func decode(payload any, data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(payload)
}
