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
	"strconv"
	"strings"
	"sync/atomic"
)

// Value represents the actual Go preference value.
type Value interface{}

type pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
}

// Bool implements a boolean type in the prefs system.
type Bool struct {
	value    atomic.Value // bool
	hookPost func(value Value) error
}

func (p *Bool) String() string {
	return fmt.Sprintf("%v", p.Get())
}

// Set new value to Bool type. New value must be of type bool or string. A
// string value of anything other than "true" (case insensitive) will set
// the value to false.
func (p *Bool) Set(v Value) error {
	var nv bool
	switch v := v.(type) {
	case bool:
		nv = v
	case string:
		nv = strings.ToLower(strings.TrimSpace(v)) == "true"
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Bool", v)
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}
	return nil
}

// Get returns the raw pref value.
func (p *Bool) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return false
	}
	return ov.(bool)
}

// SetHookPost sets the callback function to be called just after the value
// is updated.
func (p *Bool) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}

// String implements a string type in the prefs system.
type String struct {
	maxLen   int
	value    atomic.Value // string
	hookPost func(value Value) error
}

func (p *String) String() string {
	ov := p.value.Load()
	if ov == nil {
		return ""
	}
	return ov.(string)
}

// SetMaxLen sets the maximum length for a string. A value of zero or less
// removes the limit. An existing value is cropped.
func (p *String) SetMaxLen(max int) {
	p.maxLen = max
	if s := p.String(); p.maxLen > 0 && len(s) > p.maxLen {
		p.value.Store(s[:p.maxLen])
	}
}

// Set new value to String type. New value is converted with the %v verb.
func (p *String) Set(v Value) error {
	nv := strings.TrimSpace(fmt.Sprintf("%v", v))
	if p.maxLen > 0 && len(nv) > p.maxLen {
		nv = nv[:p.maxLen]
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}
	return nil
}

// Get returns the raw pref value.
func (p *String) Get() Value {
	return p.String()
}

// SetHookPost sets the callback function to be called just after the value
// is updated.
func (p *String) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}

// Int implements an integer type in the prefs system.
type Int struct {
	value    atomic.Value // int
	min, max int
	hookPost func(value Value) error
}

func (p *Int) String() string {
	return fmt.Sprintf("%d", p.Get())
}

// SetRange limits the values the Int will accept. Values outside the range
// are an error. A range where min equals max is unlimited.
func (p *Int) SetRange(min, max int) {
	p.min = min
	p.max = max
}

// Set new value to Int type. New value must be an int or a string that can
// be converted to an int.
func (p *Int) Set(v Value) error {
	var nv int
	switch v := v.(type) {
	case int:
		nv = v
	case int64:
		nv = int(v)
	case string:
		var err error
		nv, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("prefs: cannot convert %T to prefs.Int: %w", v, err)
		}
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Int", v)
	}

	if p.min != p.max && (nv < p.min || nv > p.max) {
		return fmt.Errorf("prefs: value %d out of range [%d, %d]", nv, p.min, p.max)
	}

	p.value.Store(nv)

	if p.hookPost != nil {
		return p.hookPost(nv)
	}
	return nil
}

// Get returns the raw pref value.
func (p *Int) Get() Value {
	ov := p.value.Load()
	if ov == nil {
		return 0
	}
	return ov.(int)
}

// SetHookPost sets the callback function to be called just after the value
// is updated.
func (p *Int) SetHookPost(f func(value Value) error) {
	p.hookPost = f
}
