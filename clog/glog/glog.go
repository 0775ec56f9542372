// Package glog routes clog messages to github.com/golang/glog.
// Importing it for side effects installs the logger.
package glog

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/golang/glog"

	"github.com/cayleygraph/gremsql/clog"
)

func init() {
	clog.SetLogger(Logger{})
}

// depth is the number of frames between glog and the clog caller.
const depth = 3

// Logger implements clog.Leveled using glog. Verbosity is shared with the -v flag.
type Logger struct{}

func (Logger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(depth, fmt.Sprintf(format, args...))
}

func (Logger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(depth, fmt.Sprintf(format, args...))
}

func (Logger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(depth, fmt.Sprintf(format, args...))
}

func (Logger) Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(depth, fmt.Sprintf(format, args...))
}

func (Logger) V(level int) bool {
	return bool(glog.V(glog.Level(level)))
}

func (Logger) SetV(level int) {
	if err := flag.Set("v", strconv.Itoa(level)); err != nil {
		glog.Warningf("cannot change log level: %v", err)
	}
}
