package vdcr

import (
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/export"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

const dateLayout = "2006-01-02"

// Column names of an exported row, in order.
const (
	ColSrNo          = "Sr No"
	ColDocumentName  = "Document Name"
	ColStatus        = "Status"
	ColRevision      = "Revision"
	ColEquipmentTags = "Equipment Tags"
	ColLastUpdate    = "Last Update"
	ColUpdated       = "Updated"
)

// Flatten turns records into export rows, computing age labels against now.
func Flatten(records []*repository.VDCRRecord, now time.Time) []export.Record {
	rows := make([]export.Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		touched := LastTouched(rec)
		lastUpdate := ""
		if !touched.IsZero() {
			lastUpdate = touched.In(now.Location()).Format(dateLayout)
		}
		rows = append(rows, export.Record{
			{Key: ColSrNo, Value: rec.SrNo},
			{Key: ColDocumentName, Value: rec.DocumentName},
			{Key: ColStatus, Value: string(NormalizeStatus(rec.Status))},
			{Key: ColRevision, Value: deref(rec.Revision)},
			{Key: ColEquipmentTags, Value: strings.Join(rec.EquipmentTagNumbers, ", ")},
			{Key: ColLastUpdate, Value: lastUpdate},
			{Key: ColUpdated, Value: AgeLabel(touched, now)},
		})
	}
	return rows
}

// Filter keeps records whose normalized status is one of statuses. No statuses keeps all.
func Filter(records []*repository.VDCRRecord, statuses ...string) []*repository.VDCRRecord {
	if len(statuses) == 0 {
		return records
	}
	want := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		want[NormalizeStatus(s)] = true
	}
	out := []*repository.VDCRRecord{}
	for _, rec := range records {
		if rec != nil && want[NormalizeStatus(rec.Status)] {
			out = append(out, rec)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
