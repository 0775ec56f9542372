package clog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type capture struct {
	lines []string
	level int
}

func (c *capture) Infof(format string, args ...interface{}) {
	c.lines = append(c.lines, "I "+fmt.Sprintf(format, args...))
}
func (c *capture) Warningf(format string, args ...interface{}) {
	c.lines = append(c.lines, "W "+fmt.Sprintf(format, args...))
}
func (c *capture) Errorf(format string, args ...interface{}) {
	c.lines = append(c.lines, "E "+fmt.Sprintf(format, args...))
}
func (c *capture) Fatalf(format string, args ...interface{}) {
	c.lines = append(c.lines, "F "+fmt.Sprintf(format, args...))
}
func (c *capture) V(level int) bool { return c.level >= level }
func (c *capture) SetV(level int)   { c.level = level }

func TestLeveledLogger(t *testing.T) {
	old := logger
	defer SetLogger(old)

	c := &capture{}
	SetLogger(c)
	Debugf("hidden %d", 1)
	SetV(2)
	require.Equal(t, 2, c.level)
	Debugf("shown %d", 2)
	Warningf("careful")
	Errorf("failed: %v", "x")
	require.Equal(t, []string{"I shown 2", "W careful", "E failed: x"}, c.lines)
}

func TestDiscard(t *testing.T) {
	old := logger
	defer SetLogger(old)

	SetLogger(nil)
	SetV(0)
	require.False(t, V(1))
	Infof("nothing")
	SetV(1)
	require.True(t, V(1))
	SetV(0)
}
