// This file is part of Sio800.
//
// Sio800 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Sio800 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Sio800.  If not, see <https://www.gnu.org/licenses/>.

package prefs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// the command line stack holds groups of overrides. only the top group is
// consulted by Disk.Load()
var commandLine struct {
	crit  sync.Mutex
	stack []map[string]string
}

// PushCommandLineStack adds a new group of overrides. The prefs string is of
// the form "key::value; key::value". Malformed entries are ignored.
func PushCommandLineStack(prefs string) {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	group := make(map[string]string)
	for _, p := range strings.Split(prefs, ";") {
		kv := strings.Split(p, "::")
		if len(kv) == 2 {
			group[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	commandLine.stack = append(commandLine.stack, group)
}

// PopCommandLineStack removes the top group and returns the entries that
// were not used, as a normalised and sorted prefs string.
func PopCommandLineStack() string {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	if len(commandLine.stack) == 0 {
		return ""
	}

	group := commandLine.stack[len(commandLine.stack)-1]
	commandLine.stack = commandLine.stack[:len(commandLine.stack)-1]

	keys := make([]string, 0, len(group))
	for k := range group {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := make([]string, 0, len(keys))
	for _, k := range keys {
		s = append(s, fmt.Sprintf("%s::%s", k, group[k]))
	}
	return strings.Join(s, "; ")
}

// GetCommandLinePref returns the value for the key from the top group. The
// entry is removed from the group once it has been used.
func GetCommandLinePref(key string) (bool, Value) {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	if len(commandLine.stack) == 0 {
		return false, nil
	}

	group := commandLine.stack[len(commandLine.stack)-1]
	if v, ok := group[key]; ok {
		delete(group, key)
		return true, v
	}

	return false, nil
}
