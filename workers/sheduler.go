package workers

import (
	"strings"
	"time"

	"github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/config"
	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/sirupsen/logrus"
)

const purgeFileTask = "PurgeFile"

type Scheduler struct {
	server *machinery.Server
	log    logrus.FieldLogger
}

func NewScheduler(brokerUrl string, log logrus.FieldLogger) (*Scheduler, error) {
	if !strings.Contains(brokerUrl, "://") {
		brokerUrl = "redis://" + brokerUrl
	}
	cfg := &config.Config{
		DefaultQueue:    "aora_tasks",
		ResultsExpireIn: int(time.Hour.Seconds()),
		Broker:          brokerUrl,
		ResultBackend:   brokerUrl,
		Redis: &config.RedisConfig{
			MaxIdle:                3,
			IdleTimeout:            240,
			ReadTimeout:            15,
			WriteTimeout:           15,
			ConnectTimeout:         15,
			NormalTasksPollPeriod:  1000,
			DelayedTasksPollPeriod: 500,
		},
	}

	server, err := machinery.NewServer(cfg)
	if err != nil {
		return nil, err
	}
	return &Scheduler{server: server, log: log}, nil
}

func (sh *Scheduler) Listen() error {
	worker := sh.server.NewWorker("aora_worker", 0)
	worker.SetErrorHandler(func(err error) {
		sh.log.WithError(err).Error("task failed")
	})
	return worker.Launch()
}

func (sh *Scheduler) PublishPurgeFile(bucket, fileID string) error {
	_, err := sh.server.SendTask(purgeFileSignature(bucket, fileID))
	return err
}

func purgeFileSignature(bucket, fileID string) *tasks.Signature {
	return &tasks.Signature{
		Name: purgeFileTask,
		Args: []tasks.Arg{
			{
				Type:  "string",
				Value: bucket,
			},
			{
				Type:  "string",
				Value: fileID,
			},
		},
		RetryCount:   3,
		RetryTimeout: 5,
	}
}

func (sh *Scheduler) Register(executor *FilesTasksExecutor) error {
	return sh.server.RegisterTasks(executor.GetCommandsMapping())
}
