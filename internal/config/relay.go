package config

import "time"

// Relay configures the outbox relay loop.
type Relay struct {
	BatchSize uint32        `env:"RELAY_BATCH_SIZE" envDefault:"100"`
	Interval  time.Duration `env:"RELAY_INTERVAL" envDefault:"1s"`
	// Concurrency bounds how many partition keys of a batch are produced in
	// parallel. Messages sharing a key are always produced in order.
	Concurrency int `env:"RELAY_CONCURRENCY" envDefault:"16"`
}
