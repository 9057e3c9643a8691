package corpus

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadpack/internal/model"
)

func readAll(t *testing.T, r *Reader) ([]model.Thread, error) {
	t.Helper()
	var out []model.Thread
	err := Each(r, func(th model.Thread) error {
		out = append(out, th)
		return nil
	})
	return out, err
}

func TestReaderStreamsThreads(t *testing.T) {
	in := `{"thread_id":"thread_1","url":"https://x/1","text_clean":"hello","metrics":{"reactionCount":3}}

{"id":"thread_2","text_raw":"raw only","comments":[{"comment_id":"c1","text_raw":"hi"}]}
`
	threads, err := readAll(t, NewReader(strings.NewReader(in)))
	require.NoError(t, err)
	require.Len(t, threads, 2)

	assert.Equal(t, "thread_1", threads[0].ID())
	assert.Equal(t, "hello", threads[0].Text())
	assert.Equal(t, 3, threads[0].Metrics.Engagement())

	assert.Equal(t, "thread_2", threads[1].ID())
	assert.Equal(t, "raw only", threads[1].Text())
	assert.Equal(t, []string{"hi"}, threads[1].CommentTexts(10))
}

func TestReaderLastLineWithoutNewline(t *testing.T) {
	threads, err := readAll(t, NewReader(strings.NewReader(`{"thread_id":"a"}`)))
	require.NoError(t, err)
	require.Len(t, threads, 1)
}

func TestReaderFailsFastOnMalformedLine(t *testing.T) {
	in := "{\"thread_id\":\"a\"}\nnot json\n{\"thread_id\":\"c\"}\n"
	r := NewReader(strings.NewReader(in))

	threads, err := readAll(t, r)
	require.Error(t, err)
	assert.Len(t, threads, 1)

	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Line)

	// the stream stays failed
	_, err = r.Next()
	assert.True(t, errors.As(err, &me))
}

func TestReaderRejectsNonObjects(t *testing.T) {
	for _, line := range []string{"null", "[1,2]", `"text"`, "{broken"} {
		_, err := NewReader(strings.NewReader(line + "\n")).Next()
		var me *MalformedError
		assert.Truef(t, errors.As(err, &me), "line %q should be malformed, got %v", line, err)
	}
}

func TestReaderLongLines(t *testing.T) {
	long := strings.Repeat("needling ", 200_000)
	in := `{"thread_id":"big","text_clean":"` + long + `"}` + "\n"
	r := NewReader(strings.NewReader(in))
	th, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, long, th.Text())
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteJSONLKeepsMarkup(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONL(&buf, []map[string]string{{"text": "a <b> & c"}})
	require.NoError(t, err)
	assert.Equal(t, "{\"text\":\"a <b> & c\"}\n", buf.String())
}
