/*
 * Copyright 2026 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package warcparquet

import (
	"fmt"
	"io"
	"strings"
)

type NameValue struct {
	Name  string
	Value string
}

func (n *NameValue) String() string {
	return n.Name + ": " + n.Value
}

// WarcFields is the ordered list of header lines of a record. Names may repeat.
type WarcFields []*NameValue

// Get gets the first value associated with the given key. It is case insensitive.
// If the key doesn't exist or there are no values associated with the key, Get returns "".
// To access multiple values of a key, use GetAll.
func (wf *WarcFields) Get(name string) string {
	for _, nv := range *wf {
		if strings.EqualFold(nv.Name, name) {
			return nv.Value
		}
	}
	return ""
}

// GetAll returns all values associated with the given key in the order they were added. It is case insensitive.
func (wf *WarcFields) GetAll(name string) []string {
	var result []string
	for _, nv := range *wf {
		if strings.EqualFold(nv.Name, name) {
			result = append(result, nv.Value)
		}
	}
	return result
}

func (wf *WarcFields) Has(name string) bool {
	for _, nv := range *wf {
		if strings.EqualFold(nv.Name, name) {
			return true
		}
	}
	return false
}

func (wf *WarcFields) Add(name string, value string) {
	*wf = append(*wf, &NameValue{Name: name, Value: value})
}

// Set replaces the first value of name and removes the rest. The field is appended if missing.
func (wf *WarcFields) Set(name string, value string) {
	isSet := false
	result := (*wf)[:0]
	for _, nv := range *wf {
		if strings.EqualFold(nv.Name, name) {
			if isSet {
				continue
			}
			nv.Value = value
			isSet = true
		}
		result = append(result, nv)
	}
	*wf = result
	if !isSet {
		wf.Add(name, value)
	}
}

func (wf *WarcFields) Delete(name string) {
	var result []*NameValue
	for _, nv := range *wf {
		if !strings.EqualFold(nv.Name, name) {
			result = append(result, nv)
		}
	}
	*wf = result
}

func (wf *WarcFields) Write(w io.Writer) (bytesWritten int64, err error) {
	var n int
	for _, field := range *wf {
		n, err = fmt.Fprintf(w, "%s: %s\r\n", field.Name, field.Value)
		bytesWritten += int64(n)
		if err != nil {
			return
		}
	}
	return
}

func (wf *WarcFields) String() string {
	sb := &strings.Builder{}
	if _, err := wf.Write(sb); err != nil {
		panic(err)
	}
	return sb.String()
}
