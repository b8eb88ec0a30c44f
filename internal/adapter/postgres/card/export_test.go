package card

import "time"

// SetNow overrides the clock used to stamp saved_at and the usage day.
func (r *Repo) SetNow(now func() time.Time) {
	r.now = now
}
