package emailprobe

import (
	"github.com/sirupsen/logrus"

	"github.com/optimode/emailprobe/check"
)

// NewLogrusTracer returns a Tracer writing events to logger. SMTP traffic
// and lookups are logged at debug level, verdicts and skips at info,
// failed lookups at warn.
func NewLogrusTracer(logger logrus.FieldLogger) check.Tracer {
	return check.TracerFunc(func(e check.TraceEvent) {
		fields := logrus.Fields{"event": string(e.Kind)}
		if e.Host != "" {
			fields["host"] = e.Host
		}
		if e.Line != "" {
			fields["line"] = e.Line
		}
		if e.Reason != "" {
			fields["reason"] = e.Reason
		}
		entry := logger.WithFields(fields)
		if e.Err != nil {
			entry = entry.WithError(e.Err)
		}

		switch e.Kind {
		case check.TraceVerdict:
			entry.WithField("verdict", e.Verdict.String()).Info("probe finished")
		case check.TraceSkip:
			entry.Info("probe skipped")
		case check.TraceLookup:
			if e.Err != nil {
				entry.Warn("MX lookup failed")
				return
			}
			entry.Debug("MX lookup")
		case check.TraceDial:
			entry.Debug("connecting")
		default:
			entry.Debug("smtp")
		}
	})
}
