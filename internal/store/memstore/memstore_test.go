package memstore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGet(t *testing.T) {
	cli := New()
	require.NoError(t, cli.Put(context.Background(), "users/alice/report.csv", strReader("hello world"), 11, "text/csv"))

	rc, err := cli.Get(context.Background(), "users/alice/report.csv", 0, -1)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestGetRanged(t *testing.T) {
	cli := New()
	require.NoError(t, cli.Put(context.Background(), "f.txt", strReader("0123456789"), 10, ""))

	rc, err := cli.Get(context.Background(), "f.txt", 2, 5)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "2345", string(data))
}

func TestGetRangeStartPastEOFReturnsEmpty(t *testing.T) {
	cli := New()
	require.NoError(t, cli.Put(context.Background(), "f.txt", strReader("abc"), 3, ""))

	rc, err := cli.Get(context.Background(), "f.txt", 10, -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Empty(t, data)
}

func TestGetMissingKey(t *testing.T) {
	cli := New()
	_, err := cli.Get(context.Background(), "nope.txt", 0, -1)
	assert.Error(t, err)
}

func TestHead(t *testing.T) {
	cli := New()
	ok, size, err := cli.Head(context.Background(), "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, size)

	require.NoError(t, cli.Put(context.Background(), "present.txt", strReader("abcd"), 4, ""))
	ok, size, err = cli.Head(context.Background(), "present.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), size)
}

func TestDelete(t *testing.T) {
	cli := New()
	require.NoError(t, cli.Put(context.Background(), "f.txt", strReader("x"), 1, ""))
	require.NoError(t, cli.Delete(context.Background(), "f.txt"))

	ok, _, _ := cli.Head(context.Background(), "f.txt")
	assert.False(t, ok)
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	cli := New()
	assert.NoError(t, cli.Delete(context.Background(), "never-existed.txt"))
}

func TestCopy(t *testing.T) {
	cli := New()
	require.NoError(t, cli.Put(context.Background(), "src.txt", strReader("payload"), 7, ""))
	require.NoError(t, cli.Copy(context.Background(), "src.txt", "dst.txt"))

	rc, err := cli.Get(context.Background(), "dst.txt", 0, -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "payload", string(data))
}

func TestCopyMissingSource(t *testing.T) {
	cli := New()
	err := cli.Copy(context.Background(), "missing.txt", "dst.txt")
	assert.Error(t, err)
}

func TestListByPrefix(t *testing.T) {
	cli := New()
	require.NoError(t, cli.Put(context.Background(), "users/alice/a.txt", strReader("1"), 1, ""))
	require.NoError(t, cli.Put(context.Background(), "users/alice/sub/b.txt", strReader("2"), 1, ""))
	require.NoError(t, cli.Put(context.Background(), "users/bob/c.txt", strReader("3"), 1, ""))

	out, err := cli.List(context.Background(), "users/alice")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "users/alice/a.txt", out[0].Key)
	assert.Equal(t, "users/alice/sub/b.txt", out[1].Key)
}

func TestSeedBypassesModBookkeeping(t *testing.T) {
	cli := New()
	cli.Seed("users/alice/report.csv", []byte("seeded"))

	rc, err := cli.Get(context.Background(), "users/alice/report.csv", 0, -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "seeded", string(data))

	_, seeded := cli.mod["users/alice/report.csv"]
	assert.False(t, seeded, "Seed must not populate mod, unlike Put")
}

func strReader(s string) io.Reader { return strings.NewReader(s) }
