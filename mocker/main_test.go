package main

import (
	"bytes"
	"testing"

	"github.com/kildevaeld/mocker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	var out bytes.Buffer

	o, err := parseArgs("mocker", nil, &out)

	require.NoError(t, err)
	assert.False(t, o.done)
	assert.Equal(t, mocker.DefaultConfig(), o.cfg)
	assert.Empty(t, out.String())
}

func TestParseArgs_DirectoryAndFlags(t *testing.T) {
	var out bytes.Buffer

	o, err := parseArgs("mocker", []string{"api", "-p", "9000", "--watch", "--cors", "--log-file", "mock.log"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "api", o.cfg.Dir)
	assert.Equal(t, "9000", o.cfg.Port)
	assert.True(t, o.cfg.Watch)
	assert.True(t, o.cfg.CORS)
	assert.Equal(t, "mock.log", o.logFile)
	assert.False(t, o.done)

	o, err = parseArgs("mocker", []string{"--port=1234", "fixtures"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", o.cfg.Dir)
	assert.Equal(t, "1234", o.cfg.Port)
}

func TestParseArgs_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		var out bytes.Buffer

		o, err := parseArgs("mocker", []string{arg}, &out)

		require.NoError(t, err)
		assert.True(t, o.done)
		assert.Contains(t, out.String(), "Usage: mocker [directory] [options]")
		assert.Contains(t, out.String(), "--port")
	}
}

func TestParseArgs_Version(t *testing.T) {
	for _, arg := range []string{"-v", "--version"} {
		var out bytes.Buffer

		o, err := parseArgs("mocker", []string{arg}, &out)

		require.NoError(t, err)
		assert.True(t, o.done)
		assert.Equal(t, version+"\n", out.String())
	}
}

func TestParseArgs_Errors(t *testing.T) {
	var out bytes.Buffer

	_, err := parseArgs("mocker", []string{"--nope"}, &out)
	assert.Error(t, err)

	_, err = parseArgs("mocker", []string{"a", "b"}, &out)
	assert.Error(t, err)
}
