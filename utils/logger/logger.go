// Package logger is a thin object-tagged wrapper over logrus.
package logger

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 20

var std = logrus.StandardLogger()

func objToString(obj any) (objStr string) {
	switch o := obj.(type) {
	case nil:
		objStr = "NIL"
	case string:
		objStr = o
	case stringer:
		objStr = o.String()
	default:
		t := reflect.TypeOf(obj)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

// Init sets the global level and the text formatter used by every log line.
func Init(lvl logrus.Level) {
	std.SetLevel(lvl)
	std.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
}

// SetLogger replaces the underlying logrus logger. Tests use it with a hook.
func SetLogger(l *logrus.Logger) {
	std = l
}

func log(lvl logrus.Level, object any, message string) {
	if !std.IsLevelEnabled(lvl) {
		return
	}
	std.WithField("obj", objToString(object)).Log(lvl, message)
}

func logf(lvl logrus.Level, object any, message string, args ...any) {
	if !std.IsLevelEnabled(lvl) {
		return
	}
	std.WithField("obj", objToString(object)).Log(lvl, fmt.Sprintf(message, args...))
}

func Trace(object any, message string) {
	log(logrus.TraceLevel, object, message)
}

func Tracef(object any, message string, args ...any) {
	logf(logrus.TraceLevel, object, message, args...)
}

func Debug(object any, message string) {
	log(logrus.DebugLevel, object, message)
}

func Debugf(object any, message string, args ...any) {
	logf(logrus.DebugLevel, object, message, args...)
}

func Info(object any, message string) {
	log(logrus.InfoLevel, object, message)
}

func Infof(object any, message string, args ...any) {
	logf(logrus.InfoLevel, object, message, args...)
}

func Warning(object any, message string) {
	log(logrus.WarnLevel, object, message)
}

func Warningf(object any, message string, args ...any) {
	logf(logrus.WarnLevel, object, message, args...)
}

func Error(object any, message string) {
	log(logrus.ErrorLevel, object, message)
}

func Errorf(object any, message string, args ...any) {
	logf(logrus.ErrorLevel, object, message, args...)
}

func Fatalf(object any, message string, args ...any) {
	std.WithField("obj", objToString(object)).Fatalf(message, args...)
}
