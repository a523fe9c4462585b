package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/user"
)

func newTestLogger(debug bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	conf := core.NewTestConfig()
	conf.Debug = debug
	return NewLogger(log.New(&buf, "", 0), conf), &buf
}

func TestLogger_prepare(t *testing.T) {
	l, _ := newTestLogger(false)
	err := errors.New("boom")
	extra := map[string]interface{}{"period": "1ère Période"}
	usr := user.User{ID: "u1", Username: "awa"}

	got := l.prepare("failed", []interface{}{err, usr, extra, &user.User{ID: "u2"}})
	assert.Equal(t, []interface{}{"failed", err, extra}, got)
}

func TestLogger_levels(t *testing.T) {
	l, buf := newTestLogger(false)
	l.Debug("hidden")
	l.Info("shown")
	l.Error("failed", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO: shown")
	assert.Contains(t, out, "ERROR: failed")
	assert.Contains(t, out, "boom")

	l, buf = newTestLogger(true)
	l.Debug("visible")
	assert.Contains(t, buf.String(), "DEBUG: visible")
}
