package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string
	Format string
	// File enables a rotating log file next to stdout
	File string
}

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	options = Options{Level: "info", Format: "text"}
	output  io.Writer
)

// Init resets the logging options. Loggers created before the call keep their old settings.
func Init(opts Options) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	options = opts
	output = nil
	if opts.File != "" {
		output = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	}
	loggers = make(map[string]*logrus.Logger)
}

// GetLogger returns the logger registered under name, creating it on first use.
func GetLogger(name string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	log, ok := loggers[name]
	if !ok {
		log = createLogger()
		loggers[name] = log
	}
	return log.WithField("component", name)
}

func createLogger() *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(options.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if options.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if output != nil {
		log.SetOutput(output)
	} else {
		log.SetOutput(os.Stdout)
	}
	return log
}

// Discard is a logger for tests and for components built without one.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
