/*
 * Copyright (c) 2019, Psiphon Inc.
 * All rights reserved.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package errtrace adds inline, single stack frame provenance to
// error messages without the cost of a full runtime.Stack dump.
// Adapted from psiphon/common/errors and psiphon/common/stacktrace.
package errtrace

import (
	"fmt"
	"runtime"
	"strings"
)

// New returns a new error with the given message, tagged with the
// caller's function name and line.
func New(message string) error {
	pc, _, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s#%d: %s", functionName(pc), line, message)
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(format string, args ...interface{}) error {
	pc, _, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s#%d: %s", functionName(pc), line, fmt.Sprintf(format, args...))
}

// Wrap tags err with the caller's function name and line. Returns
// nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	pc, _, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s#%d: %w", functionName(pc), line, err)
}

// Wrapf is Wrap with an additional formatted message prepended.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	pc, _, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s#%d: %s: %w", functionName(pc), line, fmt.Sprintf(format, args...), err)
}

// functionName extracts a short function name from the full name
// runtime.Func.Name() returns, decluttering error messages.
func functionName(pc uintptr) string {
	name := runtime.FuncForPC(pc).Name()
	if i := strings.LastIndex(name, "/"); i != -1 {
		name = name[i+1:]
	}
	return name
}
