package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purgeCall struct {
	bucket, fileID string
	hasDeadline    bool
}

type fakePurger struct {
	calls []purgeCall
	err   error
}

func (fp *fakePurger) PurgeFile(ctx context.Context, bucket, fileID string) error {
	_, hasDeadline := ctx.Deadline()
	fp.calls = append(fp.calls, purgeCall{bucket: bucket, fileID: fileID, hasDeadline: hasDeadline})
	return fp.err
}

func TestExecutorMapsPurgeTask(t *testing.T) {
	purger := &fakePurger{}
	executor := NewFilesTasksExecutor(purger, time.Minute)

	mapping := executor.GetCommandsMapping()
	require.Contains(t, mapping, purgeFileTask)

	run, ok := mapping[purgeFileTask].(func(string, string) error)
	require.True(t, ok)
	require.NoError(t, run("media", "file-1"))
	assert.Equal(t, []purgeCall{{bucket: "media", fileID: "file-1", hasDeadline: true}}, purger.calls)
}

func TestExecutorReturnsPurgeError(t *testing.T) {
	executor := NewFilesTasksExecutor(&fakePurger{err: errors.New("gridfs down")}, 0)
	require.Error(t, executor.ExecutePurgeFile("media", "file-1"))
}

func TestPurgeFileSignature(t *testing.T) {
	signature := purgeFileSignature("media", "file-1")
	assert.Equal(t, purgeFileTask, signature.Name)
	require.Len(t, signature.Args, 2)
	assert.Equal(t, "media", signature.Args[0].Value)
	assert.Equal(t, "file-1", signature.Args[1].Value)
}
