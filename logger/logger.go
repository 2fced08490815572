package logger

import (
	"io"
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger 는 애플리케이션 전역에서 사용하는 최소 로거 인터페이스다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Log 는 전역 로거 인스턴스다.
// Init 이 호출되지 않더라도 기본 info 레벨로 동작하도록 초기화한다.
var Log Logger = NewLogger("info")

var serviceName = os.Getenv("SERVICE_NAME")

// Init 은 설정에서 읽은 레벨과 서비스 이름으로 전역 로거를 초기화한다.
// 레벨이 비어 있으면 info 를 사용한다.
func Init(level, service string) {
	if service != "" {
		serviceName = service
	}
	Log = NewLogger(normalizeLevel(level))
}

// InitWriter 는 stdout 대신 w 로 출력한다. stdio 로 프로토콜을 주고받는 MCP 서버는 stderr 를 사용한다.
func InitWriter(w io.Writer, level, service string) {
	if service != "" {
		serviceName = service
	}
	levels := levelsUpTo(slog.LevelByName(normalizeLevel(level)))
	Log = newLogger(handler.NewIOWriterHandler(w, levels))
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return "info"
	}
	return level
}

// NewLogger 는 주어진 레벨로 gookit/slog 기반 로거를 생성한다.
func NewLogger(level string) Logger {
	return newLogger(handler.NewConsoleHandler(levelsUpTo(slog.LevelByName(level))))
}

func levelsUpTo(logLevel slog.Level) []slog.Level {
	var levels []slog.Level
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}
	return levels
}

type formattableHandler interface {
	slog.Handler
	SetFormatter(f slog.Formatter)
}

func newLogger(h formattableHandler) *slog.Logger {
	// 기본 필드는 datetime/level/message 로만 제한하고 나머지 정보는
	// Fields(top-level 키)로만 출력한다.
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// withServiceName 은 service_name 필드를 보강한다.
func withServiceName(fields Fields) Fields {
	if fields == nil {
		fields = Fields{}
	}
	if _, ok := fields["service_name"]; !ok && serviceName != "" {
		fields["service_name"] = serviceName
	}
	return fields
}

// logWithFields 는 service_name 을 보강한 필드와 함께 lv 레벨로 출력한다.
// Log 가 gookit 로거가 아니면 필드 없이 메시지만 남긴다.
func logWithFields(lv slog.Level, msg string, fields Fields) {
	lg, ok := Log.(*slog.Logger)
	if !ok {
		switch lv {
		case slog.DebugLevel:
			Log.Debug(msg)
		case slog.WarnLevel:
			Log.Warn(msg)
		case slog.ErrorLevel:
			Log.Error(msg)
		default:
			Log.Info(msg)
		}
		return
	}
	lg.WithFields(slog.M(withServiceName(fields))).Log(lv, msg)
}

// InfoWithFields 는 request_id, feedback_id 등 구조화 필드를 포함한
// JSON 로그를 출력하기 위한 헬퍼 함수다.
func InfoWithFields(msg string, fields Fields) { logWithFields(slog.InfoLevel, msg, fields) }

func DebugWithFields(msg string, fields Fields) { logWithFields(slog.DebugLevel, msg, fields) }

func WarnWithFields(msg string, fields Fields) { logWithFields(slog.WarnLevel, msg, fields) }

func ErrorWithFields(msg string, fields Fields) { logWithFields(slog.ErrorLevel, msg, fields) }
