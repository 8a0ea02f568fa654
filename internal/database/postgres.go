package database

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := postgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn}), gormConfig())
}

// postgresDSN builds a libpq keyword/value string. An explicit DSN wins over the
// discrete fields; either way the result must parse as a pgx connection string.
func postgresDSN(cfg Config) (string, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		if err := requireCredentials("postgres", cfg); err != nil {
			return "", err
		}

		params := []string{
			pgParam("host", withDefault(cfg.Host, "localhost")),
			pgParam("port", strconv.Itoa(withDefaultPort(cfg.Port, 5432))),
			pgParam("user", cfg.User),
			pgParam("dbname", cfg.Name),
		}
		if cfg.Password != "" {
			params = append(params, pgParam("password", cfg.Password))
		}

		options := map[string]string{"sslmode": "disable"}
		for key, value := range cfg.Options {
			options[key] = value
		}
		keys := make([]string, 0, len(options))
		for key := range options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			params = append(params, pgParam(key, options[key]))
		}
		dsn = strings.Join(params, " ")
	}

	if _, err := pgconn.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("postgres: invalid dsn: %w", err)
	}
	return dsn, nil
}

func pgParam(key, value string) string {
	if value == "" || strings.ContainsAny(value, ` '\`) {
		value = "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value) + "'"
	}
	return key + "=" + value
}
