package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/ui"
	"github.com/ohmynofan/drops-autoclaimer/pkg/utils"
)

var (
	fileLogger *log.Logger
	once       sync.Once
	logFile    *os.File
)

func Init(path string) error {
	var err error
	once.Do(func() {
		os.Remove(path)
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return
		}
		logFile, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		fileLogger = log.New(logFile, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	})
	return err
}

func Close() error {
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

type ClassLogger struct {
	class   string
	session *model.Session
}

func NewLogger(v interface{}, session *model.Session) *ClassLogger {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &ClassLogger{class: t.Name(), session: session}
}

func NewNamed(name string, session *model.Session) *ClassLogger {
	return &ClassLogger{class: name, session: session}
}

// Log writes to the log file and mirrors msg on the platform's dashboard block.
func (l *ClassLogger) Log(msg string) {
	if l == nil {
		return
	}
	l.write(msg)
	if l.session != nil {
		ui.UpdateStatus(*l.session, shortenForDisplay(msg), 0)
	}
}

// Wait shows msg with a countdown for d, returning early if ctx ends.
func (l *ClassLogger) Wait(ctx context.Context, msg string, d time.Duration) error {
	if l != nil {
		l.write(fmt.Sprintf("%s (%s)", msg, d))
	}
	if d <= 0 {
		return ctx.Err()
	}
	interval := 1 * time.Second
	for remaining := d; remaining > 0; remaining -= interval {
		if l != nil && l.session != nil {
			ui.UpdateStatus(*l.session, shortenForDisplay(msg), remaining)
		}
		sleepTime := interval
		if remaining < interval {
			sleepTime = remaining
		}
		timer := time.NewTimer(sleepTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (l *ClassLogger) JustLog(msg string) {
	if l == nil {
		return
	}
	l.write(msg)
}

func (l *ClassLogger) LogObject(msg string, obj interface{}) {
	if l == nil || fileLogger == nil {
		return
	}
	formattedString, err := utils.FormatObject(obj)
	if err != nil {
		l.JustLog(fmt.Sprintf("Error formatting object: %v", err))
		return
	}
	l.JustLog(fmt.Sprintf("%s : \n%v", msg, formattedString))
}

func (l *ClassLogger) write(msg string) {
	if fileLogger == nil {
		return
	}
	funcName := callerFunc(3)
	if l.session != nil {
		fileLogger.Printf("[%s][%s][%s] %s", l.session.Platform, l.class, funcName, msg)
		return
	}
	fileLogger.Printf("[%s][%s] %s", l.class, funcName, msg)
}

func callerFunc(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	parts := strings.Split(fn.Name(), ".")
	return parts[len(parts)-1]
}

func shortenForDisplay(msg string) string {
	const maxLen = 140
	runes := []rune(msg)
	if len(runes) <= maxLen {
		return msg
	}
	return string(runes[:maxLen-1]) + "…"
}
