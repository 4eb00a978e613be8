package dataorg

import (
	"fmt"

	"github.com/surrealdb/dataorg/pkg/store/mirror"
	"github.com/surrealdb/dataorg/pkg/store/surrealdb"
)

// Backend names a store realisation.
type Backend string

const (
	BackendPostgres  Backend = "postgres"
	BackendSQLite    Backend = "sqlite"
	BackendSurrealDB Backend = "surrealdb"
	BackendMemory    Backend = "memory"
	BackendMirror    Backend = "mirror"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendPostgres, BackendSQLite, BackendSurrealDB, BackendMemory, BackendMirror:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want postgres, sqlite, surrealdb, memory or mirror)", s)
	}
}

// Config holds the settings shared by every command. Values come from flags, then
// DATAORG_* environment variables, then the optional config file.
type Config struct {
	Backend Backend

	PostgresDSN string
	SQLitePath  string
	SurrealDB   surrealdb.Config

	// MirrorPrimary and MirrorSecondary name the two stores of the mirror backend.
	MirrorPrimary   Backend
	MirrorSecondary Backend
	MirrorMode      mirror.Mode

	BatchSize   int
	ReadOnly    bool
	AutoMigrate bool

	LogLevel   string
	LogFile    string
	LogConsole bool
}
