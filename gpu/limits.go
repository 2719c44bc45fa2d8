// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"reflect"
	"strings"

	"cogentcore.org/hellogpu/hal"
)

// RequiredLimits returns limits with every field undefined, meaning
// "accept whatever the adapter offers". Set only the fields the
// application has a specific numeric need for.
func RequiredLimits() hal.Limits {
	return hal.UndefinedLimits()
}

// LimitViolation describes one required limit that the adapter cannot meet.
type LimitViolation struct {
	Name      string
	Required  uint64
	Supported uint64
}

func (lv LimitViolation) String() string {
	if strings.HasPrefix(lv.Name, "Min") {
		return fmt.Sprintf("%s: required %d < supported %d", lv.Name, lv.Required, lv.Supported)
	}
	return fmt.Sprintf("%s: required %d > supported %d", lv.Name, lv.Required, lv.Supported)
}

// LimitViolations returns every field of required that is tighter than
// supported. Max* limits are violated when required > supported;
// Min* (alignment) limits when required < supported.
// Undefined fields never violate.
func LimitViolations(required, supported hal.Limits) []LimitViolation {
	var vs []LimitViolation
	rv := reflect.ValueOf(required)
	sv := reflect.ValueOf(supported)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		var req, sup, undef uint64
		switch f.Type.Kind() {
		case reflect.Uint32:
			undef = uint64(hal.LimitU32Undefined)
		case reflect.Uint64:
			undef = hal.LimitU64Undefined
		default:
			continue
		}
		req = rv.Field(i).Uint()
		sup = sv.Field(i).Uint()
		if req == undef {
			continue
		}
		tighter := req > sup
		if strings.HasPrefix(f.Name, "Min") {
			tighter = req < sup
		}
		if tighter {
			vs = append(vs, LimitViolation{Name: f.Name, Required: req, Supported: sup})
		}
	}
	return vs
}

// CheckLimits returns an error wrapping [ErrLimitExceeded] that lists
// every violation of supported by required, or nil if there are none.
func CheckLimits(required, supported hal.Limits) error {
	vs := LimitViolations(required, supported)
	if len(vs) == 0 {
		return nil
	}
	strs := make([]string, len(vs))
	for i, v := range vs {
		strs[i] = v.String()
	}
	return fmt.Errorf("%w: %s", ErrLimitExceeded, strings.Join(strs, "; "))
}
