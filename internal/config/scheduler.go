package config

import "time"

// Scheduler configures the periodic maintenance jobs. Specs use the standard
// five field cron syntax.
type Scheduler struct {
	JobTimeout time.Duration `env:"SCHEDULER_JOB_TIMEOUT" envDefault:"1m"`

	HeartbeatSpec    string        `env:"SCHEDULER_HEARTBEAT_SPEC" envDefault:"*/5 * * * *"`
	HeartbeatLogPath string        `env:"SCHEDULER_HEARTBEAT_LOG_PATH" envDefault:"/tmp/crm_heartbeat_log.txt"`
	HealthURL        string        `env:"SCHEDULER_HEALTH_URL" envDefault:"http://localhost:8000/healthz"`
	HealthTimeout    time.Duration `env:"SCHEDULER_HEALTH_TIMEOUT" envDefault:"5s"`

	RestockSpec    string `env:"SCHEDULER_RESTOCK_SPEC" envDefault:"0 */12 * * *"`
	RestockLogPath string `env:"SCHEDULER_RESTOCK_LOG_PATH" envDefault:"/tmp/low_stock_updates_log.txt"`

	ReminderSpec     string        `env:"SCHEDULER_REMINDER_SPEC" envDefault:"0 8 * * *"`
	ReminderLogPath  string        `env:"SCHEDULER_REMINDER_LOG_PATH" envDefault:"/tmp/order_reminders_log.txt"`
	ReminderLookback time.Duration `env:"SCHEDULER_REMINDER_LOOKBACK" envDefault:"168h"`

	ReportSpec    string `env:"SCHEDULER_REPORT_SPEC" envDefault:"0 6 * * 1"`
	ReportLogPath string `env:"SCHEDULER_REPORT_LOG_PATH" envDefault:"/tmp/crm_report_log.txt"`
}
