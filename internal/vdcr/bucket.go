// Package vdcr groups vendor document control records by review status and prepares them for export.
package vdcr

import (
	"strings"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
)

type Status string

const (
	StatusApproved           Status = types.VDCRApproved
	StatusSentForApproval    Status = types.VDCRSentForApproval
	StatusReceivedForComment Status = types.VDCRReceivedForComment
	StatusPending            Status = types.VDCRPending
	StatusRejected           Status = types.VDCRRejected
)

// Statuses is the display order of the status tabs.
var Statuses = []Status{
	StatusApproved, StatusSentForApproval, StatusReceivedForComment, StatusPending, StatusRejected,
}

// NormalizeStatus folds "Sent For Approval" and "sent_for_approval" to "sent-for-approval".
func NormalizeStatus(s string) Status {
	r := strings.ToLower(strings.TrimSpace(s))
	r = strings.NewReplacer("_", "-", " ", "-").Replace(r)
	return Status(r)
}

func (s Status) Known() bool {
	for _, k := range Statuses {
		if s == k {
			return true
		}
	}
	return false
}

// Bucket partitions records by normalized status, keeping input order inside each bucket.
// Every known status is present, possibly empty; unrecognized statuses get their own key.
func Bucket(records []*repository.VDCRRecord) map[Status][]*repository.VDCRRecord {
	buckets := make(map[Status][]*repository.VDCRRecord, len(Statuses))
	for _, s := range Statuses {
		buckets[s] = []*repository.VDCRRecord{}
	}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		s := NormalizeStatus(rec.Status)
		buckets[s] = append(buckets[s], rec)
	}
	return buckets
}

// Counts returns the size of every bucket.
func Counts(buckets map[Status][]*repository.VDCRRecord) map[Status]int {
	counts := make(map[Status]int, len(buckets))
	for s, recs := range buckets {
		counts[s] = len(recs)
	}
	return counts
}
