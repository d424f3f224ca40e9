package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Invitation status values
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

type Invitation struct {
	ID        string
	ProjectID string
	MemberID  string
	Email     string
	Token     string
	Role      string
	InvitedBy string
	Status    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	FindPendingByProject(ctx context.Context, projectID string) ([]*Invitation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ExpireOlderThan(ctx context.Context, now time.Time) (int, error)
}

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

const invitationColumns = `id, project_id, member_id, email, token, role, invited_by, status, expires_at, created_at`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.MemberID, &inv.Email, &inv.Token, &inv.Role,
		&inv.InvitedBy, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	invitation.Token = uuid.New().String()
	query := `
		INSERT INTO invitations (project_id, member_id, email, token, role, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		invitation.ProjectID, invitation.MemberID, invitation.Email, invitation.Token,
		invitation.Role, invitation.InvitedBy, invitation.Status, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
}

func (r *pgInvitationRepository) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, token))
}

func (r *pgInvitationRepository) FindPendingByProject(ctx context.Context, projectID string) ([]*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE project_id = $1 AND status = 'pending' ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := []*Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE invitations SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *pgInvitationRepository) ExpireOlderThan(ctx context.Context, now time.Time) (int, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE invitations SET status = 'expired' WHERE status = 'pending' AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
