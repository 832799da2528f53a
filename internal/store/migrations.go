package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Render presets table - named rendering configurations
		`CREATE TABLE IF NOT EXISTS render_presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			output_width INTEGER NOT NULL,
			output_height INTEGER NOT NULL,
			grid_width INTEGER NOT NULL,
			grid_height INTEGER NOT NULL,
			radius REAL NOT NULL,
			smoothness REAL NOT NULL,
			margin INTEGER NOT NULL,
			legend_width INTEGER NOT NULL,
			trail_length INTEGER NOT NULL,
			target_rate REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_render_presets_name ON render_presets(name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
