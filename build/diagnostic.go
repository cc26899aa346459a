// Copyright 2025 Google LLC
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

package build

import (
	"fmt"
	"runtime/debug"
)

// Tag prefixes every diagnostic reported by the pipeline.
const Tag = "[embedded-dependencies]"

// Severity of a diagnostic.
type Severity int

// Severity values.
const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a non-fatal problem reported by a build.
type Diagnostic struct {
	Severity Severity
	// Message is tagged with Tag.
	Message string
	// Stack is the stack trace of a recovered panic, if any.
	Stack string
}

func (d Diagnostic) String() string {
	if d.Stack == "" {
		return d.Message
	}
	return d.Message + "\n" + d.Stack
}

func newDiagnostic(sev Severity, context string, err error) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf("%s %s: %v", Tag, context, err),
	}
}

// panicError is a panic recovered from a caller-supplied function.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p.value)
}

func (p *panicError) Unwrap() error {
	err, _ := p.value.(error)
	return err
}

// callSafely runs fn, turning a panic into a *panicError.
func callSafely[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return fn()
}
