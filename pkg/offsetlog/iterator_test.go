package offsetlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLog(t *testing.T, values ...string) (*Log, []int64) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	ids := make([]int64, len(values))
	for i, v := range values {
		off, err := l.Append([]byte(v))
		require.NoError(t, err)
		ids[i] = off
	}
	return l, ids
}

func TestIterator_Forward(t *testing.T) {
	l, ids := seedLog(t, "one", "two", "three")

	it := NewIterator(l)
	var got []string
	for {
		rec, ok, err := it.Forward()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, string(rec.Data))
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
	_ = ids
}

func TestIterator_Backward(t *testing.T) {
	l, _ := seedLog(t, "one", "two", "three")

	it := NewReverseIterator(l)
	var got []string
	for {
		rec, ok, err := it.Backward()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, string(rec.Data))
	}
	assert.Equal(t, []string{"three", "two", "one"}, got)
}

func TestIterator_AlternatingDirections(t *testing.T) {
	l, ids := seedLog(t, "one", "two", "three")

	it := NewIteratorAt(l, ids[1])

	rec, ok, err := it.Forward()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(rec.Data))

	// Immediately calling Backward from the position just advanced to
	// must yield the very record just read.
	rec, ok, err = it.Backward()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(rec.Data))

	rec, ok, err = it.Backward()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", string(rec.Data))

	_, ok, err = it.Backward()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIterator_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	it := NewIterator(l)
	_, ok, err := it.Forward()
	require.NoError(t, err)
	assert.False(t, ok)

	rit := NewReverseIterator(l)
	_, ok, err = rit.Backward()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIterator_ResumeViaBoundary(t *testing.T) {
	l, _ := seedLog(t, "one", "two", "three")

	it := NewIterator(l)
	_, ok, err := it.Forward()
	require.NoError(t, err)
	require.True(t, ok)

	resumed := NewIteratorAt(l, it.Boundary())
	rec, ok, err := resumed.Forward()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(rec.Data))
}
