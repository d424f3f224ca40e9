package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Equipment struct {
	ID                  string
	ProjectID           string
	Name                string
	Type                string
	TagNumber           string
	JobNumber           *string
	ManufacturingSerial *string
	Status              string
	Priority            *string
	Progress            int
	ProgressPhase       *string
	Location            *string
	Supervisor          *string
	NextMilestone       *string
	NextMilestoneDate   *time.Time
	PODate              *time.Time
	TechnicalSections   []map[string]interface{}
	CustomFields        map[string]interface{}
	Notes               *string
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *Equipment) error
	FindByID(ctx context.Context, id string) (*Equipment, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*Equipment, error)
	CountByProjectID(ctx context.Context, projectID string) (int, error)
	Update(ctx context.Context, equipment *Equipment) error
	Delete(ctx context.Context, id string) error
}

type pgEquipmentRepository struct {
	pool *pgxpool.Pool
}

func NewEquipmentRepository(pool *pgxpool.Pool) EquipmentRepository {
	return &pgEquipmentRepository{pool: pool}
}

const equipmentColumns = `id, project_id, name, type, tag_number, job_number, manufacturing_serial, status, priority,
	progress, progress_phase, location, supervisor, next_milestone, next_milestone_date, po_date,
	technical_sections, custom_fields, notes, created_by, created_at, updated_at`

func scanEquipment(row pgx.Row) (*Equipment, error) {
	e := &Equipment{}
	var sectionsJSON, customJSON []byte
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Name, &e.Type, &e.TagNumber, &e.JobNumber, &e.ManufacturingSerial,
		&e.Status, &e.Priority, &e.Progress, &e.ProgressPhase, &e.Location, &e.Supervisor,
		&e.NextMilestone, &e.NextMilestoneDate, &e.PODate, &sectionsJSON, &customJSON,
		&e.Notes, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(sectionsJSON) > 0 {
		_ = json.Unmarshal(sectionsJSON, &e.TechnicalSections)
	}
	if len(customJSON) > 0 {
		_ = json.Unmarshal(customJSON, &e.CustomFields)
	}
	return e, nil
}

func marshalEquipmentJSON(e *Equipment) ([]byte, []byte) {
	sections := []byte("[]")
	if e.TechnicalSections != nil {
		sections, _ = json.Marshal(e.TechnicalSections)
	}
	custom := []byte("{}")
	if e.CustomFields != nil {
		custom, _ = json.Marshal(e.CustomFields)
	}
	return sections, custom
}

func (r *pgEquipmentRepository) Create(ctx context.Context, e *Equipment) error {
	sections, custom := marshalEquipmentJSON(e)
	query := `
		INSERT INTO equipment (project_id, name, type, tag_number, job_number, manufacturing_serial, status,
			priority, progress, progress_phase, location, supervisor, next_milestone, next_milestone_date,
			po_date, technical_sections, custom_fields, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		e.ProjectID, e.Name, e.Type, e.TagNumber, e.JobNumber, e.ManufacturingSerial, e.Status,
		e.Priority, e.Progress, e.ProgressPhase, e.Location, e.Supervisor, e.NextMilestone,
		e.NextMilestoneDate, e.PODate, sections, custom, e.Notes, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *pgEquipmentRepository) FindByID(ctx context.Context, id string) (*Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	return scanEquipment(r.pool.QueryRow(ctx, query, id))
}

func (r *pgEquipmentRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE project_id = $1 ORDER BY tag_number, created_at`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	equipment := []*Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		equipment = append(equipment, e)
	}
	return equipment, rows.Err()
}

func (r *pgEquipmentRepository) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM equipment WHERE project_id = $1`, projectID).Scan(&count)
	return count, err
}

func (r *pgEquipmentRepository) Update(ctx context.Context, e *Equipment) error {
	sections, custom := marshalEquipmentJSON(e)
	query := `
		UPDATE equipment
		SET name = $2, type = $3, tag_number = $4, job_number = $5, manufacturing_serial = $6, status = $7,
		    priority = $8, progress = $9, progress_phase = $10, location = $11, supervisor = $12,
		    next_milestone = $13, next_milestone_date = $14, po_date = $15, technical_sections = $16,
		    custom_fields = $17, notes = $18, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		e.ID, e.Name, e.Type, e.TagNumber, e.JobNumber, e.ManufacturingSerial, e.Status,
		e.Priority, e.Progress, e.ProgressPhase, e.Location, e.Supervisor, e.NextMilestone,
		e.NextMilestoneDate, e.PODate, sections, custom, e.Notes,
	).Scan(&e.UpdatedAt)
}

func (r *pgEquipmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	return err
}
