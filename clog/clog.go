// Copyright 2016 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clog provides a logging interface for gremsql packages.
//
// Messages go to the standard library logger unless a different Logger is installed,
// usually by importing clog/glog from the main package.
package clog

import (
	"log"
	"sync/atomic"
)

// Logger is the clog logging interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// Leveled is implemented by loggers that manage verbosity on their own.
type Leveled interface {
	Logger
	V(level int) bool
	SetV(level int)
}

var logger Logger = stdlog{}

// SetLogger sets the clog logging implementation. A nil logger discards all messages.
func SetLogger(l Logger) { logger = l }

var verbosity int32

// V reports whether messages of a given verbosity level should be logged.
func V(level int) bool {
	if l, ok := logger.(Leveled); ok {
		return l.V(level)
	}
	return int(atomic.LoadInt32(&verbosity)) >= level
}

// SetV sets the verbosity level.
func SetV(level int) {
	if l, ok := logger.(Leveled); ok {
		l.SetV(level)
		return
	}
	atomic.StoreInt32(&verbosity, int32(level))
}

// Debugf logs a message if verbosity is at least 2.
func Debugf(format string, args ...interface{}) {
	if V(2) {
		Infof(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if logger != nil {
		logger.Infof(format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if logger != nil {
		logger.Warningf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if logger != nil {
		logger.Errorf(format, args...)
	}
}

// Fatalf logs a message and terminates the program.
func Fatalf(format string, args ...interface{}) {
	if logger != nil {
		logger.Fatalf(format, args...)
	}
}

type stdlog struct{}

func (stdlog) Infof(format string, args ...interface{})    { log.Printf("I "+format, args...) }
func (stdlog) Warningf(format string, args ...interface{}) { log.Printf("W "+format, args...) }
func (stdlog) Errorf(format string, args ...interface{})   { log.Printf("E "+format, args...) }
func (stdlog) Fatalf(format string, args ...interface{})   { log.Fatalf("F "+format, args...) }
