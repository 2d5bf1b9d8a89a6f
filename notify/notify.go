package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Alert is a user-visible message with a title, shown as a dialog by the UI layer.
type Alert struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(alert Alert)
}

func Info(n Notifier, title, message string) {
	n.Notify(Alert{Level: LevelInfo, Title: title, Message: message})
}

func Success(n Notifier, message string) {
	n.Notify(Alert{Level: LevelSuccess, Title: "Success", Message: message})
}

func Error(n Notifier, message string) {
	n.Notify(Alert{Level: LevelError, Title: "Error", Message: message})
}

// LogNotifier writes alerts to a logger. Used where no UI is attached.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (ln LogNotifier) Notify(alert Alert) {
	entry := ln.Log.WithFields(logrus.Fields{"alert": alert.Level.String(), "title": alert.Title})
	if alert.Level == LevelError {
		entry.Warn(alert.Message)
		return
	}
	entry.Info(alert.Message)
}

// Recorder keeps every alert in order.
type Recorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *Recorder) Notify(alert Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}

func (r *Recorder) Last() (Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.alerts) == 0 {
		return Alert{}, false
	}
	return r.alerts[len(r.alerts)-1], true
}
