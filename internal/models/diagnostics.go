package models

// ColumnInfo описание колонки таблицы.
type ColumnInfo struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"null"`
	Default  *string `json:"default"`
}

// TableInfo описание таблицы и ее колонок.
type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// MigrationState состояние версионированных миграций.
type MigrationState struct {
	Version uint `json:"version"`
	Latest  uint `json:"latest"`
	Dirty   bool `json:"dirty"`
}

// Diagnosis отчет для администратора.
type Diagnosis struct {
	EnvInfo    map[string]string `json:"env_info"`
	Migrations *MigrationState   `json:"migrations,omitempty"`
	Tables     []TableInfo       `json:"tables"`
	FixResult  string            `json:"fix_result,omitempty"`
	Error      string            `json:"error,omitempty"`
}
