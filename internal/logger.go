package internal

import (
	"fmt"
	"sync"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

type Importance string

const (
	Info    Importance = " "
	Warning Importance = "?"
	Error   Importance = "!"
)

const logTimeLayout = "2006-01-02 15:04:05"

// Logger writes through logrus; feature events are also stored when a database is set
type Logger struct {
	log      *logrus.Logger
	entry    *logrus.Entry
	database Database
	location *time.Location
	mu       sync.Mutex
	writer   chan *FeatureLogMessage
	done     chan struct{}
}

func NewLogger(component string) *Logger {
	log := logrus.New()
	log.Formatter = &formatter.Formatter{
		TimestampFormat: time.RFC3339,
		TrimMessages:    true,
		NoFieldsSpace:   true,
		HideKeys:        true,
		FieldsOrder:     []string{"component", "category"},
	}
	return &Logger{
		log:      log,
		entry:    log.WithFields(logrus.Fields{"component": component, "category": "App"}),
		location: time.UTC,
	}
}

// SetLevel accepts logrus level names
func (l *Logger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.log.SetLevel(lvl)
	return nil
}

func (l *Logger) SetReportCaller(enable bool) {
	l.log.SetReportCaller(enable)
}

func (l *Logger) SetLocation(location *time.Location) {
	if location != nil {
		l.location = location
	}
}

// SetDatabase starts the background writer of feature events
func (l *Logger) SetDatabase(database Database) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if database == nil || l.writer != nil {
		return
	}
	l.database = database
	l.writer = make(chan *FeatureLogMessage, 100)
	l.done = make(chan struct{})
	go l.startWriter(l.writer, l.done)
}

// Close stops storing events and waits until the queued ones are written
func (l *Logger) Close() {
	l.mu.Lock()
	writer, done := l.writer, l.done
	l.writer = nil
	l.mu.Unlock()
	if writer == nil {
		return
	}
	close(writer)
	<-done
}

func (l *Logger) startWriter(writer <-chan *FeatureLogMessage, done chan<- struct{}) {
	defer close(done)
	for message := range writer {
		if err := l.database.WriteLogMessage(message); err != nil {
			l.entry.WithField("category", "DB").Errorf("write log to database failed: %v", err)
		}
	}
}

func (l *Logger) FeatureEvent(feature, id, text string) {
	l.entry.WithField("category", feature).Infof("[%s] %s", id, text)
	l.store(Info, feature, id, text)
}

func (l *Logger) Debug(text string) {
	l.entry.Debug(text)
}

func (l *Logger) Warn(text string) {
	l.entry.Warn(text)
	l.store(Warning, "warning", "", text)
}

func (l *Logger) Error(text string, err error) {
	l.entry.WithError(err).Error(text)
	l.store(Error, "error", "", fmt.Sprintf("%s: %v", text, err))
}

func (l *Logger) store(importance Importance, feature, id, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer == nil {
		return
	}
	if id == "" {
		id = "*"
	}
	now := time.Now()
	message := &FeatureLogMessage{
		Time:       now.In(l.location).Format(logTimeLayout),
		TimeStamp:  now.UTC(),
		Feature:    feature,
		Id:         id,
		Text:       text,
		Importance: string(importance),
	}
	select {
	case l.writer <- message:
	default:
		l.entry.Warn("log writer queue is full, message dropped")
	}
}
