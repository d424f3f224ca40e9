package service

import (
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/export"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/Marga-Ghale/ora-fabtrack/internal/vdcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVDCRService_Board(t *testing.T) {
	env := setupServiceTest(t)
	ga := env.createVDCR(t, "1", "GA Drawing", types.VDCRApproved, env.now.AddDate(0, 0, -1))
	ds := env.createVDCR(t, "2", "Datasheet", "Sent For Approval", env.now.AddDate(0, 0, -9))
	env.createVDCR(t, "3", "ITP", "on-hold", env.now)

	board, err := env.services.VDCR.Board(env.ctx, env.viewer.ID, env.project.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, board.Total)
	assert.Equal(t, 1, board.Counts[vdcr.StatusApproved])
	assert.Equal(t, 1, board.Counts[vdcr.StatusSentForApproval])
	assert.Equal(t, 0, board.Counts[vdcr.StatusRejected])
	assert.Equal(t, 1, board.Counts[vdcr.Status("on-hold")])
	assert.Equal(t, "1 day ago", board.Ages[ga.ID])
	assert.Equal(t, "9 days ago", board.Ages[ds.ID])
}

func TestVDCRService_Create(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.services.VDCR

	_, err := svc.Create(env.ctx, env.viewer.ID, env.project.ID, VDCRInput{DocumentName: "GA"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(env.ctx, env.editor.ID, env.project.ID, VDCRInput{DocumentName: "GA", Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	rec, err := svc.Create(env.ctx, env.editor.ID, env.project.ID, VDCRInput{
		SrNo:                " 7 ",
		DocumentName:        "GA Drawing",
		Status:              "Received_For_Comment",
		EquipmentTagNumbers: []string{"TAG-101", " ", "TAG-102 "},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", rec.SrNo)
	assert.Equal(t, types.VDCRReceivedForComment, rec.Status)
	assert.Equal(t, []string{"TAG-101", "TAG-102"}, []string(rec.EquipmentTagNumbers))
	require.NotNil(t, rec.LastUpdate)
	assert.True(t, rec.LastUpdate.Equal(env.now))
}

func TestVDCRService_Update_StatusChangeNotifiesManagers(t *testing.T) {
	env := setupServiceTest(t)
	rec := env.createVDCR(t, "1", "GA Drawing", types.VDCRPending, env.now.AddDate(0, 0, -3))

	updated, err := env.services.VDCR.Update(env.ctx, env.editor.ID, rec.ID, VDCRUpdate{Status: strPtr("Sent For Approval")})
	require.NoError(t, err)
	assert.Equal(t, types.VDCRSentForApproval, updated.Status)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, env.editor.ID, *updated.UpdatedBy)
	assert.True(t, updated.LastUpdate.Equal(env.now))

	notes, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.pm.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeVDCRStatusChanged, notes[0].Type)

	editorNotes, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.editor.ID, false)
	require.NoError(t, err)
	assert.Empty(t, editorNotes)

	entries, err := env.services.VDCR.ListActivity(env.ctx, env.pm.ID, rec.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ActivityStatusChanged, entries[0].ActivityType)
	assert.Equal(t, "Status", entries[0].Changes[0].Field)
}

func TestVDCRService_Update_ManagerActingDoesNotNotifySelf(t *testing.T) {
	env := setupServiceTest(t)
	rec := env.createVDCR(t, "1", "GA Drawing", types.VDCRPending, env.now)

	_, err := env.services.VDCR.Update(env.ctx, env.pm.ID, rec.ID, VDCRUpdate{Status: strPtr(types.VDCRApproved)})
	require.NoError(t, err)

	notes, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.pm.ID, false)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestVDCRService_Update_Invalid(t *testing.T) {
	env := setupServiceTest(t)
	rec := env.createVDCR(t, "1", "GA Drawing", types.VDCRPending, env.now)

	_, err := env.services.VDCR.Update(env.ctx, env.editor.ID, rec.ID, VDCRUpdate{Status: strPtr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.services.VDCR.Update(env.ctx, env.viewer.ID, rec.ID, VDCRUpdate{Remarks: strPtr("ok")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.services.VDCR.Update(env.ctx, env.editor.ID, "missing", VDCRUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVDCRService_Delete(t *testing.T) {
	env := setupServiceTest(t)
	rec := env.createVDCR(t, "1", "GA Drawing", types.VDCRPending, env.now)

	assert.ErrorIs(t, env.services.VDCR.Delete(env.ctx, env.editor.ID, rec.ID), ErrForbidden)
	require.NoError(t, env.services.VDCR.Delete(env.ctx, env.pm.ID, rec.ID))

	_, err := env.services.VDCR.Get(env.ctx, env.pm.ID, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVDCRService_Export(t *testing.T) {
	env := setupServiceTest(t)
	env.createVDCR(t, "1", `GA "Rev A"`, types.VDCRApproved, env.now.AddDate(0, 0, -2))
	env.createVDCR(t, "2", "Datasheet", types.VDCRRejected, env.now)

	out, err := env.services.VDCR.Export(env.ctx, env.viewer.ID, env.project.ID, types.VDCRApproved)
	require.NoError(t, err)
	assert.Equal(t, "vdcr-refinery-expansion-2024-03-15.csv", out.FileName)
	require.Len(t, out.Records, 1)
	assert.Equal(t, `GA "Rev A"`, out.Records[0].Get(vdcr.ColDocumentName))
	assert.Equal(t, "2 days ago", out.Records[0].Get(vdcr.ColUpdated))

	csv := export.String(out.Records)
	assert.Contains(t, csv, `"GA ""Rev A"""`)

	_, err = env.services.VDCR.Export(env.ctx, env.outsider.ID, env.project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "vdcr-unit-2-hp-boiler-2024-03-15.csv", exportFileName("Unit #2 / HP Boiler!", now))
	assert.Equal(t, "vdcr-project-2024-03-15.csv", exportFileName("  ***  ", now))
}

func TestVDCRService_SendReviewReminders(t *testing.T) {
	env := setupServiceTest(t)
	env.createVDCR(t, "1", "GA Drawing", types.VDCRSentForApproval, env.now.AddDate(0, 0, -10))
	env.createVDCR(t, "2", "Datasheet", types.VDCRReceivedForComment, env.now.AddDate(0, 0, -8))
	env.createVDCR(t, "3", "ITP", types.VDCRSentForApproval, env.now.AddDate(0, 0, -2))
	env.createVDCR(t, "4", "Old Approved", types.VDCRApproved, env.now.AddDate(0, 0, -30))

	sent, err := env.services.VDCR.SendReviewReminders(env.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	notes, err := env.repos.NotificationRepo.FindByUserID(env.ctx, env.pm.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeVDCRReviewOverdue, notes[0].Type)
	assert.Contains(t, notes[0].Message, "2 document(s) in Refinery Expansion")
}
