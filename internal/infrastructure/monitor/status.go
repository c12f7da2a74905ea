package monitor

import "time"

// Status is the latest reachability snapshot.
type Status struct {
	API            bool          `json:"api"`
	APIStatusCode  int           `json:"api_status_code,omitempty"`
	APILatency     time.Duration `json:"api_latency"`
	Storage        bool          `json:"storage"`
	StorageBackend string        `json:"storage_backend"`
	LastCheck      time.Time     `json:"last_check"`
}
