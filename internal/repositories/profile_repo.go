package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lanceraa/api/internal/database"
	"github.com/lanceraa/api/internal/models"
	"github.com/lib/pq"
)

const profileColumns = `id, account_id, bio, skills, years_experience, hourly_rate,
	street, city, state, country, zip,
	website, linkedin, github, twitter, profile_image,
	created_at, updated_at`

type ProfileRepository struct {
	db database.Querier
}

func NewProfileRepository(db database.Querier) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfileRow(scanner rowScanner) (*models.Profile, error) {
	var p models.Profile
	var skills []string

	err := scanner.Scan(
		&p.ID, &p.AccountID, &p.Bio, pq.Array(&skills), &p.YearsExperience, &p.HourlyRate,
		&p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.Country, &p.Address.Zip,
		&p.Website, &p.LinkedIn, &p.GitHub, &p.Twitter, &p.ProfileImage,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if skills == nil {
		skills = []string{}
	}
	p.Skills = skills

	return &p, nil
}

func (r *ProfileRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE account_id = $1`
	return scanProfileRow(r.db.QueryRow(ctx, query, accountID))
}

// EnsureExists creates an empty profile for the account unless one already
// exists, and returns the stored profile either way
func (r *ProfileRepository) EnsureExists(ctx context.Context, accountID string) (*models.Profile, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO profiles (id, account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (account_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, uuid.New().String(), accountID, now); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return r.GetByAccountID(ctx, accountID)
}

// Save persists every mutable column of the profile and returns the stored row
func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	p.UpdatedAt = time.Now().UTC()

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	query := `
		UPDATE profiles SET
			bio = $1, skills = $2, years_experience = $3, hourly_rate = $4,
			street = $5, city = $6, state = $7, country = $8, zip = $9,
			website = $10, linkedin = $11, github = $12, twitter = $13, profile_image = $14,
			updated_at = $15
		WHERE account_id = $16
		RETURNING ` + profileColumns

	return scanProfileRow(r.db.QueryRow(ctx, query,
		p.Bio, pq.Array(skills), p.YearsExperience, p.HourlyRate,
		p.Address.Street, p.Address.City, p.Address.State, p.Address.Country, p.Address.Zip,
		p.Website, p.LinkedIn, p.GitHub, p.Twitter, p.ProfileImage,
		p.UpdatedAt, p.AccountID,
	))
}
