package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erecord_reminder_scans_total",
		Help: "Number of completed reminder scan passes.",
	})
	sentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erecord_reminder_emails_sent_total",
		Help: "Number of booster reminder emails delivered.",
	})
	sendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erecord_reminder_send_failures_total",
		Help: "Number of booster reminder emails that failed to send.",
	})
	flagClearFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erecord_reminder_flag_clear_failures_total",
		Help: "Number of sent reminders whose one-shot flag could not be cleared.",
	})
)
