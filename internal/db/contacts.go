package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, user_id, name, email, company, relationship_strength,
	        last_contact_date, created_at, updated_at`

func scanContact(row pgx.Row) (*ProfessionalContact, error) {
	var c ProfessionalContact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Company,
		&c.RelationshipStrength, &c.LastContactDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContact inserts a new professional contact
func (db *DB) CreateContact(ctx context.Context, input *ContactCreateInput) (*ProfessionalContact, error) {
	contact, err := scanContact(db.pool.QueryRow(ctx,
		`INSERT INTO professional_contacts (user_id, name, email, company, relationship_strength, last_contact_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+contactColumns,
		input.UserID, input.Name, input.Email, input.Company,
		input.RelationshipStrength, input.LastContactDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

// GetContact retrieves a contact by ID, including its linked job IDs
func (db *DB) GetContact(ctx context.Context, id uuid.UUID) (*ProfessionalContact, error) {
	contact, err := scanContact(db.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM professional_contacts WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if err := db.loadLinkedJobs(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// ListContacts retrieves all of a user's contacts with linked job IDs loaded
func (db *DB) ListContacts(ctx context.Context, userID uuid.UUID) ([]ProfessionalContact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+contactColumns+`
		 FROM professional_contacts
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []ProfessionalContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	rows.Close()

	for i := range contacts {
		if err := db.loadLinkedJobs(ctx, &contacts[i]); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

// loadLinkedJobs populates the contact's linked job IDs
func (db *DB) loadLinkedJobs(ctx context.Context, c *ProfessionalContact) error {
	rows, err := db.pool.Query(ctx,
		`SELECT job_id FROM contact_jobs WHERE contact_id = $1 ORDER BY created_at`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load linked jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID uuid.UUID
		if err := rows.Scan(&jobID); err != nil {
			return fmt.Errorf("failed to scan linked job: %w", err)
		}
		c.LinkedJobIDs = append(c.LinkedJobIDs, jobID)
	}
	return nil
}

// LinkContactJob associates a contact with a job. Linking twice is a no-op.
func (db *DB) LinkContactJob(ctx context.Context, contactID, jobID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO contact_jobs (contact_id, job_id)
		 VALUES ($1, $2)
		 ON CONFLICT (contact_id, job_id) DO NOTHING`,
		contactID, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to link contact to job: %w", err)
	}
	return nil
}

// UnlinkContactJob removes a contact-job association
func (db *DB) UnlinkContactJob(ctx context.Context, contactID, jobID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM contact_jobs WHERE contact_id = $1 AND job_id = $2`,
		contactID, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink contact from job: %w", err)
	}
	return nil
}
