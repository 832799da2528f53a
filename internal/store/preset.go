package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gaitlab/plantarview/internal/heatmap"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Preset is a named rendering configuration stored in the database.
type Preset struct {
	ID        string
	Name      string
	Config    heatmap.Config
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PresetRepository provides CRUD operations for render presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

// Create inserts a new preset. A missing ID is generated; the configuration
// is validated before touching the database.
func (r *PresetRepository) Create(p *Preset) error {
	if err := p.Config.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO render_presets (id, name, output_width, output_height, grid_width, grid_height,
		 radius, smoothness, margin, legend_width, trail_length, target_rate, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Config.OutputWidth, p.Config.OutputHeight, p.Config.GridWidth, p.Config.GridHeight,
		p.Config.Radius, p.Config.Smoothness, p.Config.Margin, p.Config.LegendWidth,
		p.Config.TrailLength, p.Config.TargetRate, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a preset by its ID.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, output_width, output_height, grid_width, grid_height,
		 radius, smoothness, margin, legend_width, trail_length, target_rate, created_at, updated_at
		 FROM render_presets WHERE id = ?`, id))
}

// GetByName retrieves a preset by its unique name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, output_width, output_height, grid_width, grid_height,
		 radius, smoothness, margin, legend_width, trail_length, target_rate, created_at, updated_at
		 FROM render_presets WHERE name = ?`, name))
}

// List retrieves all presets, most recently created first.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(
		`SELECT id, name, output_width, output_height, grid_width, grid_height,
		 radius, smoothness, margin, legend_width, trail_length, target_rate, created_at, updated_at
		 FROM render_presets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p, err := scanPreset(rows.Scan)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// Update rewrites an existing preset's name and configuration.
func (r *PresetRepository) Update(p *Preset) error {
	if err := p.Config.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()

	res, err := r.db.Exec(
		`UPDATE render_presets SET name = ?, output_width = ?, output_height = ?, grid_width = ?,
		 grid_height = ?, radius = ?, smoothness = ?, margin = ?, legend_width = ?,
		 trail_length = ?, target_rate = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Config.OutputWidth, p.Config.OutputHeight, p.Config.GridWidth, p.Config.GridHeight,
		p.Config.Radius, p.Config.Smoothness, p.Config.Margin, p.Config.LegendWidth,
		p.Config.TrailLength, p.Config.TargetRate, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a preset by ID.
func (r *PresetRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM render_presets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PresetRepository) scanOne(row *sql.Row) (*Preset, error) {
	p, err := scanPreset(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanPreset(scan func(dest ...any) error) (*Preset, error) {
	p := &Preset{}
	err := scan(&p.ID, &p.Name, &p.Config.OutputWidth, &p.Config.OutputHeight,
		&p.Config.GridWidth, &p.Config.GridHeight, &p.Config.Radius, &p.Config.Smoothness,
		&p.Config.Margin, &p.Config.LegendWidth, &p.Config.TrailLength, &p.Config.TargetRate,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
