package workers

import (
	"context"
	"time"
)

type FilePurger interface {
	PurgeFile(ctx context.Context, bucket, fileID string) error
}

type FilesTasksExecutor struct {
	purger  FilePurger
	timeout time.Duration
}

func NewFilesTasksExecutor(purger FilePurger, timeout time.Duration) *FilesTasksExecutor {
	return &FilesTasksExecutor{purger: purger, timeout: timeout}
}

func (fte *FilesTasksExecutor) ExecutePurgeFile(bucket string, fileID string) error {
	ctx := context.Background()
	if fte.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fte.timeout)
		defer cancel()
	}
	return fte.purger.PurgeFile(ctx, bucket, fileID)
}

func (fte *FilesTasksExecutor) GetCommandsMapping() map[string]interface{} {
	return map[string]interface{}{
		purgeFileTask: fte.ExecutePurgeFile,
	}
}
