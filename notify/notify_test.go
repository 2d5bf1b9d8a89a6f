package notify

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsOrder(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.Last()
	require.False(t, ok)

	Info(rec, "Document picked", "cancelled")
	Success(rec, "Post updated successfully")
	Error(rec, "boom")

	alerts := rec.Alerts()
	require.Len(t, alerts, 3)
	assert.Equal(t, Alert{Level: LevelInfo, Title: "Document picked", Message: "cancelled"}, alerts[0])
	assert.Equal(t, "Success", alerts[1].Title)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, Alert{Level: LevelError, Title: "Error", Message: "boom"}, last)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	Error(LogNotifier{Log: log}, "upload failed")
	assert.Contains(t, buf.String(), `"msg":"upload failed"`)
	assert.Contains(t, buf.String(), `"title":"Error"`)
}
