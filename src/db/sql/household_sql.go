package db

import (
	"context"
	"errors"
	"fmt"

	"hearthshare-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateHousehold(ctx context.Context, pool *pgxpool.Pool, name string, createdBy int64) (*models.Household, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO households (name, created_by)
		VALUES ($1, $2)
		RETURNING id, name, created_by, created_at, updated_at
	`
	var h models.Household
	err = tx.QueryRow(ctx, query, name, createdBy).
		Scan(&h.ID, &h.Name, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO household_members (household_id, user_id, role) VALUES ($1, $2, 'owner')`, h.ID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &h, nil
}

func GetHouseholdsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Household, error) {
	query := `
		SELECT h.id, h.name, h.created_by, h.created_at, h.updated_at
		FROM households h
		JOIN household_members m ON m.household_id = h.id
		WHERE m.user_id = $1
		ORDER BY h.id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var households []models.Household
	for rows.Next() {
		var h models.Household
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		households = append(households, h)
	}
	return households, rows.Err()
}

func GetHouseholdMembers(ctx context.Context, pool *pgxpool.Pool, householdID int64) ([]models.HouseholdMember, error) {
	query := `
		SELECT m.household_id, m.user_id, u.email, u.first_name, u.last_name, m.role, m.joined_at
		FROM household_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.household_id = $1
		ORDER BY m.joined_at
	`
	rows, err := pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.HouseholdMember
	for rows.Next() {
		var m models.HouseholdMember
		if err := rows.Scan(&m.HouseholdID, &m.UserID, &m.Email, &m.FirstName, &m.LastName, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func GetMemberRole(ctx context.Context, pool *pgxpool.Pool, householdID, userID int64) (string, error) {
	query := `SELECT role FROM household_members WHERE household_id = $1 AND user_id = $2`
	var role string
	err := pool.QueryRow(ctx, query, householdID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return role, nil
}

func CreateInvite(ctx context.Context, pool *pgxpool.Pool, householdID int64, email string, invitedBy int64) (*models.HouseholdInvite, error) {
	query := `
		INSERT INTO household_invites (household_id, email, invited_by)
		VALUES ($1, $2, $3)
		RETURNING id, household_id, email, invited_by, created_at
	`
	var inv models.HouseholdInvite
	err := pool.QueryRow(ctx, query, householdID, email, invitedBy).
		Scan(&inv.ID, &inv.HouseholdID, &inv.Email, &inv.InvitedBy, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func GetInvitesForEmail(ctx context.Context, pool *pgxpool.Pool, email string) ([]models.HouseholdInvite, error) {
	query := `
		SELECT id, household_id, email, invited_by, created_at
		FROM household_invites
		WHERE email = $1
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.HouseholdInvite
	for rows.Next() {
		var inv models.HouseholdInvite
		if err := rows.Scan(&inv.ID, &inv.HouseholdID, &inv.Email, &inv.InvitedBy, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// JoinHousehold consumes a pending invite for the user's email and adds
// them as a member.
func JoinHousehold(ctx context.Context, pool *pgxpool.Pool, householdID, userID int64, email string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM household_invites WHERE household_id = $1 AND email = $2`, householdID, email)
	if err != nil {
		return fmt.Errorf("consume invite: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("no invite found")
	}

	_, err = tx.Exec(ctx, `INSERT INTO household_members (household_id, user_id, role) VALUES ($1, $2, 'member') ON CONFLICT DO NOTHING`, householdID, userID)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	return tx.Commit(ctx)
}

func RemoveMember(ctx context.Context, pool *pgxpool.Pool, householdID, userID int64) error {
	query := `DELETE FROM household_members WHERE household_id = $1 AND user_id = $2 AND role <> 'owner'`
	cmd, err := pool.Exec(ctx, query, householdID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("member not found or is the owner")
	}
	return nil
}

func GetAllHouseholdIDs(ctx context.Context, pool *pgxpool.Pool) ([]int64, error) {
	rows, err := pool.Query(ctx, `SELECT id FROM households ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
