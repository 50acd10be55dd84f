// Package health provides readiness checks for the storage backend.
package health

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// DBChecker checks a SQL database with a ping.
type DBChecker struct {
	db *sql.DB
}

func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (d *DBChecker) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// RedisChecker checks Redis with a PING command.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// FileChecker checks that the directory holding the state file exists
// and is writable.
type FileChecker struct {
	path string
}

func NewFileChecker(path string) *FileChecker {
	return &FileChecker{path: path}
}

func (f *FileChecker) HealthCheck(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("state directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("state directory %s is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("state directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
