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
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jetsetilly/sio800/curated"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences"

// WarningBoilerPlate is written to the top of every preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand while sio800 is running ***"

// separates key and value in the file.
const keySep = " :: "

// Sentinel errors.
const (
	NoPrefsFile = "prefs: no prefs file (%s)"
	UnknownKey  = "prefs: unknown key (%s)"
)

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]pref
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k]))
	}
	return s.String()
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	dsk := &Disk{
		path:    path,
		entries: make(map[string]pref),
	}
	return dsk, nil
}

func (dsk *Disk) keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add preference value to list of values to store/load from Disk. The key
// value is used to identify the value in the file.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, keySep) || strings.ContainsAny(key, ";\n") {
		return curated.Errorf("prefs: illegal key (%s)", key)
	}
	dsk.entries[key] = p
	return nil
}

// Set the value of a registered key.
func (dsk *Disk) Set(key string, v Value) error {
	p, ok := dsk.entries[key]
	if !ok {
		return curated.Errorf(UnknownKey, key)
	}
	return p.Set(v)
}

// read the file into a map of raw strings.
func (dsk *Disk) read() (map[string]string, error) {
	data := make(map[string]string)

	f, err := os.Open(dsk.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return data, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return data, curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// first line is the boiler plate
	if !scanner.Scan() {
		return data, nil
	}

	for scanner.Scan() {
		kv := strings.SplitN(scanner.Text(), keySep, 2)
		if len(kv) != 2 {
			continue
		}
		data[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}

	if err := scanner.Err(); err != nil {
		return data, curated.Errorf("prefs: %v", err)
	}

	return data, nil
}

// Save current preference values to disk. Entries in the existing file that
// are not registered with this Disk instance are kept.
func (dsk *Disk) Save() error {
	data, err := dsk.read()
	if err != nil && !curated.Is(err, NoPrefsFile) {
		return err
	}

	for k, p := range dsk.entries {
		data[k] = p.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := os.MkdirAll(filepath.Dir(dsk.path), 0o700); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, keySep, data[k])
	}

	if err := w.Flush(); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Load preference values from disk. Values on the top of the command line
// stack are applied after the file has been read, whether or not the file
// exists. A missing file results in a NoPrefsFile error, which callers
// usually ignore.
func (dsk *Disk) Load() error {
	data, err := dsk.read()

	for k, v := range data {
		if p, ok := dsk.entries[k]; ok {
			if serr := p.Set(v); serr != nil {
				return curated.Errorf("prefs: %s: %v", k, serr)
			}
		}
	}

	for _, k := range dsk.keys() {
		if ok, v := GetCommandLinePref(k); ok {
			if serr := dsk.entries[k].Set(v); serr != nil {
				return curated.Errorf("prefs: %s: %v", k, serr)
			}
		}
	}

	return err
}
