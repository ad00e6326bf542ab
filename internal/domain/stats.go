package domain

import "time"

// CrawlStats summarizes a completed crawl run.
type CrawlStats struct {
	Started  time.Time
	Finished time.Time
	Fetched  int64
	Failed   int64
	Blocked  int64
	Accepted int64
	Dropped  int64
	Enqueued int64
}

// Processed returns the total number of tasks that reached a terminal state.
func (s *CrawlStats) Processed() int64 {
	return s.Fetched + s.Failed + s.Blocked
}

// Elapsed returns the wall-clock duration of the run.
func (s *CrawlStats) Elapsed() time.Duration {
	return s.Finished.Sub(s.Started)
}
