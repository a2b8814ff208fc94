package stream

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("minify")
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

func TestLookup_BadArgs(t *testing.T) {
	for _, spec := range []string{"concat", "concat:a:b", "gzip:level9", "rename:only", "replace"} {
		_, err := Lookup(spec)
		assert.Error(t, err, spec)
	}
}

func TestLookupAll(t *testing.T) {
	tfs, err := LookupAll([]string{"concat:all.txt", "gzip"})
	require.NoError(t, err)
	assert.Len(t, tfs, 2)

	_, err = LookupAll([]string{"gzip", "nope"})
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

func TestConcat(t *testing.T) {
	tf, err := Lookup("concat:bundle.txt")
	require.NoError(t, err)

	got, err := FromFiles([]*File{
		{Path: "a.txt", Data: []byte("alpha\n")},
		{Path: "b.txt", Data: []byte("beta")},
	}).Pipe(tf).Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bundle.txt", got[0].Path)
	assert.Equal(t, "alpha\nbeta\n", string(got[0].Data))
}

func TestGzip(t *testing.T) {
	tf, err := Lookup("gzip")
	require.NoError(t, err)

	got, err := FromFiles([]*File{{Path: "a.txt", Data: []byte("alpha")}}).Pipe(tf).Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt.gz", got[0].Path)

	zr, err := gzip.NewReader(bytes.NewReader(got[0].Data))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(plain))
}

func TestRename(t *testing.T) {
	tf, err := Lookup("rename:.txt:.md")
	require.NoError(t, err)

	got, err := FromFiles([]*File{{Path: "doc.txt", Data: []byte("x")}}).Pipe(tf).Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc.md", got[0].Path)
}

func TestReplace(t *testing.T) {
	tf, err := Lookup("replace:dev:prod")
	require.NoError(t, err)

	got, err := FromFiles([]*File{{Path: "cfg", Data: []byte("env=dev url=dev.example")}}).Pipe(tf).Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "env=prod url=prod.example", string(got[0].Data))
}
