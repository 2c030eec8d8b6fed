package sl_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "<nil>", attr.Value.String())
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("local writes text with debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.SetupLogger(sl.EnvLocal, &buf)
		log.Debug("hello")
		assert.True(t, strings.Contains(buf.String(), "msg=hello"))
	})

	t.Run("dev writes json with debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.SetupLogger(sl.EnvDev, &buf)
		log.Debug("hello")
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "hello", line["msg"])
	})

	t.Run("prod skips debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.SetupLogger(sl.EnvProd, &buf)
		log.Debug("hidden")
		log.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}
