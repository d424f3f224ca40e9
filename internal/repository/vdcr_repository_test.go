package repository

import (
	"database/sql/driver"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arrayArgs returns the driver values bound for every pq.StringArray argument.
func arrayArgs(t *testing.T, query string, rec *VDCRRecord) []driver.Value {
	t.Helper()
	_, args, err := sqlx.Named(query, vdcrParams(rec))
	require.NoError(t, err)

	var values []driver.Value
	for _, arg := range args {
		arr, ok := arg.(pq.StringArray)
		if !ok {
			continue
		}
		v, err := arr.Value()
		require.NoError(t, err)
		values = append(values, v)
	}
	return values
}

func TestVDCRParams_NilListsBindAsEmptyArrays(t *testing.T) {
	rec := &VDCRRecord{
		ProjectID:           "p1",
		DocumentName:        "GA Drawing",
		EquipmentTagNumbers: pq.StringArray{"HX-101"},
	}

	for _, query := range []string{vdcrInsertQuery, vdcrUpdateQuery} {
		values := arrayArgs(t, query, rec)
		require.Len(t, values, 3)
		assert.Equal(t, `{"HX-101"}`, values[0])
		assert.Equal(t, "{}", values[1])
		assert.Equal(t, "{}", values[2])
	}
}

func TestVDCRParams_LeavesCallerRecordAlone(t *testing.T) {
	rec := &VDCRRecord{DocumentName: "Datasheet"}
	p := vdcrParams(rec)

	assert.NotNil(t, p.MfgSerialNumbers)
	assert.Nil(t, rec.MfgSerialNumbers)
}
