package scenesync

import "github.com/gogpu/vecscene/convert"

// Stats counts reconciliation outcomes.
type Stats struct {
	Created   int
	Updated   int
	Recreated int
	Deleted   int
	Skipped   int
	Failures  int
	Records   int // resident records
	Pending   int // queued features
}

func (s *Stats) count(o convert.Outcome) {
	switch o {
	case convert.OutcomeCreated:
		s.Created++
	case convert.OutcomeUpdated:
		s.Updated++
	case convert.OutcomeRecreated:
		s.Recreated++
	case convert.OutcomeDeleted:
		s.Deleted++
	case convert.OutcomeSkipped:
		s.Skipped++
	}
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Created:   s.Created + o.Created,
		Updated:   s.Updated + o.Updated,
		Recreated: s.Recreated + o.Recreated,
		Deleted:   s.Deleted + o.Deleted,
		Skipped:   s.Skipped + o.Skipped,
		Failures:  s.Failures + o.Failures,
		Records:   s.Records + o.Records,
		Pending:   s.Pending + o.Pending,
	}
}
