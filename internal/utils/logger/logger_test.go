package logger

import (
	"bytes"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dwarvesf/perp-bridge/internal/types/environments"
)

type customWriteHook struct {
	called bool
}

func (h *customWriteHook) OnWrite(_ *zapcore.CheckedEntry, _ []zapcore.Field) {
	h.called = true
}

var _ = Describe("Logger", func() {
	var logger *Logger

	Describe("#New", func() {
		It("should create a new logger with production config when environment is production", func() {
			logger = New(environments.Production)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger).NotTo(BeNil())
		})

		It("should create a new logger with development config when environment is development", func() {
			logger = New(environments.Development)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger).NotTo(BeNil())
		})

		It("should create a new logger with staging config when environment is staging", func() {
			logger = New(environments.Staging)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger).NotTo(BeNil())
		})

		It("should create a new logger with test config when environment is test", func() {
			logger = New(environments.Test)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger).NotTo(BeNil())
		})

		It("should create a new logger with production config when environment is unknown", func() {
			unknownEnv := environments.Environment("unknown")
			logger = New(unknownEnv)
			Expect(logger).NotTo(BeNil())
			Expect(logger.wrappedLogger).NotTo(BeNil())

			// Verify that the logger is configured with production settings
			zapLogger := logger.wrappedLogger.WithOptions(zap.AddCaller())
			core := zapLogger.Core()
			Expect(core.Enabled(zapcore.InfoLevel)).To(BeTrue())
			Expect(core.Enabled(zapcore.DebugLevel)).To(BeFalse())
		})
	})

	Describe("level methods", func() {
		var observed *observer.ObservedLogs

		BeforeEach(func() {
			core, logs := observer.New(zapcore.DebugLevel)
			observed = logs
			logger = &Logger{wrappedLogger: zap.New(core)}
		})

		DescribeTable("should emit one entry at the matching level",
			func(emit func(l *Logger), level zapcore.Level) {
				emit(logger)
				Expect(observed.Len()).To(Equal(1))
				entry := observed.All()[0]
				Expect(entry.Level).To(Equal(level))
				Expect(entry.ContextMap()).To(HaveKeyWithValue("tx_id", "tx_1"))
			},
			Entry("debug", func(l *Logger) { l.Debug("[Run][Hop1]", map[string]string{"tx_id": "tx_1"}) }, zapcore.DebugLevel),
			Entry("info", func(l *Logger) { l.Info("[Run][Hop1]", map[string]string{"tx_id": "tx_1"}) }, zapcore.InfoLevel),
			Entry("warn", func(l *Logger) { l.Warn("[Run][Hop1]", map[string]string{"tx_id": "tx_1"}) }, zapcore.WarnLevel),
			Entry("error", func(l *Logger) { l.Error("[Run][Hop1]", map[string]string{"tx_id": "tx_1"}) }, zapcore.ErrorLevel),
		)

		It("should accept calls without fields", func() {
			logger.Info("no fields")
			Expect(observed.All()[0].Context).To(BeEmpty())
		})

		It("should carry fields attached with With", func() {
			child := logger.With(map[string]string{"component": "orchestrator"})
			child.Info("started", map[string]string{"state": "IDLE"})

			ctx := observed.All()[0].ContextMap()
			Expect(ctx).To(HaveKeyWithValue("component", "orchestrator"))
			Expect(ctx).To(HaveKeyWithValue("state", "IDLE"))
		})
	})

	Describe("test environment", func() {
		It("should not panic when logging", func() {
			logger = New(environments.Test)
			Expect(func() {
				logger.Error("error message", map[string]string{"key": "value"})
			}).NotTo(Panic())
		})
	})

	Describe("#Fatal", func() {
		BeforeEach(func() {
			logger = New(environments.Test)
		})

		It("should log fatal messages", func() {
			hook := &customWriteHook{}
			originalLogger := logger.wrappedLogger
			defer func() { logger.wrappedLogger = originalLogger }()

			testLogger := zap.New(
				zapcore.NewCore(
					zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
					zapcore.AddSync(&bytes.Buffer{}),
					zap.FatalLevel,
				),
				zap.WithFatalHook(hook),
			)
			logger.wrappedLogger = testLogger

			logger.Fatal("fatal message", map[string]string{"key": "value"})
			Expect(hook.called).To(BeTrue())
		})
	})

	Describe("#transformStrMapToFields", func() {
		It("should transform a string map to zap fields", func() {
			inputMap := map[string]string{
				"key1": "value1",
				"key2": "value2",
			}
			fields := transformStrMapToFields(inputMap)

			// sort fields by key
			sort.Slice(fields, func(i, j int) bool {
				return fields[i].Key < fields[j].Key
			})

			Expect(fields).To(HaveLen(2))
			Expect(fields[0]).To(Equal(zap.String("key1", "value1")))
			Expect(fields[1]).To(Equal(zap.String("key2", "value2")))
		})

		It("should return an empty slice for an empty input map", func() {
			inputMap := map[string]string{}
			fields := transformStrMapToFields(inputMap)
			Expect(fields).To(BeEmpty())
		})
	})
})
