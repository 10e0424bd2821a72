package recheck

import "time"

// Record is the persisted check state for one resource. A record is created
// the first time a commit is recorded for a key and updated in place on
// every later recording; records are never deleted.
//
// CheckTime and ChangeTime are expected to be in the past when evaluated;
// the summary reporter treats a future timestamp as store corruption.
// Archived is optional in the persisted form: absent means false.
type Record struct {
	CheckTime  time.Time `toml:"check_time"`
	ChangeTime time.Time `toml:"change_time"`
	CommitHash Hash      `toml:"commit_hash"`
	Archived   bool      `toml:"archived,omitempty"`
}
