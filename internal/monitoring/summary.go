package monitoring

import "time"

// Summary surfaces aggregated read-path statistics for operators.
type Summary struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Cache       CacheSummary    `json:"cache"`
	Store       StoreSummary    `json:"store"`
	Populate    PopulateSummary `json:"populate"`
}

type CacheSummary struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	Errors   uint64  `json:"errors"`
	Corrupt  uint64  `json:"corrupt"`
	HitRatio float64 `json:"hit_ratio"`
}

type StoreSummary struct {
	Found    uint64 `json:"found"`
	NotFound uint64 `json:"not_found"`
	Errors   uint64 `json:"errors"`
}

type FailureRecord struct {
	Message  string    `json:"message"`
	Occurred time.Time `json:"occurred_at"`
}

type PopulateSummary struct {
	Success     uint64         `json:"success"`
	Failure     uint64         `json:"failure"`
	LastFailure *FailureRecord `json:"last_failure,omitempty"`
}

// Snapshot returns the summary of the process-wide module, or an empty summary when unset.
func Snapshot() Summary {
	return CurrentModule().Summary()
}

func emptySummary() Summary {
	return Summary{GeneratedAt: time.Now()}
}
