package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// VDCRRecord is a vendor document control record: one tracked document moving through
// approval and comment cycles between fabricator and client.
type VDCRRecord struct {
	ID                  string         `db:"id"`
	ProjectID           string         `db:"project_id"`
	SrNo                string         `db:"sr_no"`
	EquipmentTagNumbers pq.StringArray `db:"equipment_tag_numbers"`
	MfgSerialNumbers    pq.StringArray `db:"mfg_serial_numbers"`
	JobNumbers          pq.StringArray `db:"job_numbers"`
	ClientDocNo         *string        `db:"client_doc_no"`
	InternalDocNo       *string        `db:"internal_doc_no"`
	DocumentName        string         `db:"document_name"`
	Revision            *string        `db:"revision"`
	CodeStatus          *string        `db:"code_status"`
	Status              string         `db:"status"`
	LastUpdate          *time.Time     `db:"last_update"`
	Remarks             *string        `db:"remarks"`
	DocumentURL         *string        `db:"document_url"`
	UpdatedBy           *string        `db:"updated_by"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

type VDCRRepository interface {
	Create(ctx context.Context, record *VDCRRecord) error
	FindByID(ctx context.Context, id string) (*VDCRRecord, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*VDCRRecord, error)
	FindStale(ctx context.Context, statuses []string, olderThan time.Time) ([]*VDCRRecord, error)
	Update(ctx context.Context, record *VDCRRecord) error
	Delete(ctx context.Context, id string) error
}

type sqlxVDCRRepository struct {
	db *sqlx.DB
}

// NewVDCRRepository wraps the shared *sql.DB (pgx stdlib driver) with sqlx.
func NewVDCRRepository(db *sql.DB) VDCRRepository {
	return &sqlxVDCRRepository{db: sqlx.NewDb(db, "pgx")}
}

const vdcrColumns = `id, project_id, sr_no, equipment_tag_numbers, mfg_serial_numbers, job_numbers, client_doc_no,
	internal_doc_no, document_name, revision, code_status, status, last_update, remarks, document_url,
	updated_by, created_at, updated_at`

const vdcrInsertQuery = `
	INSERT INTO vdcr_records (project_id, sr_no, equipment_tag_numbers, mfg_serial_numbers, job_numbers,
		client_doc_no, internal_doc_no, document_name, revision, code_status, status, last_update,
		remarks, document_url, updated_by)
	VALUES (:project_id, :sr_no, :equipment_tag_numbers, :mfg_serial_numbers, :job_numbers,
		:client_doc_no, :internal_doc_no, :document_name, :revision, :code_status, :status, :last_update,
		:remarks, :document_url, :updated_by)
	RETURNING id, created_at, updated_at
`

const vdcrUpdateQuery = `
	UPDATE vdcr_records
	SET sr_no = :sr_no, equipment_tag_numbers = :equipment_tag_numbers, mfg_serial_numbers = :mfg_serial_numbers,
	    job_numbers = :job_numbers, client_doc_no = :client_doc_no, internal_doc_no = :internal_doc_no,
	    document_name = :document_name, revision = :revision, code_status = :code_status, status = :status,
	    last_update = :last_update, remarks = :remarks, document_url = :document_url,
	    updated_by = :updated_by, updated_at = NOW()
	WHERE id = :id
`

// vdcrParams returns a copy of rec safe to bind. A nil pq.StringArray binds as NULL,
// which the NOT NULL array columns reject, so nil lists become empty arrays.
func vdcrParams(rec *VDCRRecord) *VDCRRecord {
	p := *rec
	if p.EquipmentTagNumbers == nil {
		p.EquipmentTagNumbers = pq.StringArray{}
	}
	if p.MfgSerialNumbers == nil {
		p.MfgSerialNumbers = pq.StringArray{}
	}
	if p.JobNumbers == nil {
		p.JobNumbers = pq.StringArray{}
	}
	return &p
}

func (r *sqlxVDCRRepository) Create(ctx context.Context, rec *VDCRRecord) error {
	rows, err := r.db.NamedQueryContext(ctx, vdcrInsertQuery, vdcrParams(rec))
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *sqlxVDCRRepository) FindByID(ctx context.Context, id string) (*VDCRRecord, error) {
	rec := &VDCRRecord{}
	err := r.db.GetContext(ctx, rec, `SELECT `+vdcrColumns+` FROM vdcr_records WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sqlxVDCRRepository) FindByProjectID(ctx context.Context, projectID string) ([]*VDCRRecord, error) {
	records := []*VDCRRecord{}
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+vdcrColumns+` FROM vdcr_records WHERE project_id = $1 ORDER BY sr_no, created_at`, projectID)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *sqlxVDCRRepository) FindStale(ctx context.Context, statuses []string, olderThan time.Time) ([]*VDCRRecord, error) {
	records := []*VDCRRecord{}
	query := `
		SELECT ` + vdcrColumns + `
		FROM vdcr_records
		WHERE status = ANY($1) AND COALESCE(last_update, updated_at) < $2
		ORDER BY project_id, sr_no
	`
	if err := r.db.SelectContext(ctx, &records, query, pq.StringArray(statuses), olderThan); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *sqlxVDCRRepository) Update(ctx context.Context, rec *VDCRRecord) error {
	_, err := r.db.NamedExecContext(ctx, vdcrUpdateQuery, vdcrParams(rec))
	return err
}

func (r *sqlxVDCRRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM vdcr_records WHERE id = $1`, id)
	return err
}
