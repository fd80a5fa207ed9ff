package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meminc/powsysmon/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository     = (*PostgresUserRepo)(nil)
	_ TopologyRepository = (*PostgresTopologyRepo)(nil)
	_ AlarmRepository    = (*PostgresAlarmRepo)(nil)
	_ AuditRepository    = (*PostgresAuditRepo)(nil)
)

// PostgresUserRepo implements UserRepository.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

const getUserByEmailSQL = `SELECT id, email, password_hash, name, role, status, created_at, updated_at
FROM users WHERE email = $1`

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, getUserByEmailSQL, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// PostgresTopologyRepo implements TopologyRepository.
type PostgresTopologyRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTopologyRepo(pool *pgxpool.Pool) *PostgresTopologyRepo {
	return &PostgresTopologyRepo{db: pool}
}

const listConnectionsSQL = `SELECT id, from_element_id, to_element_id, kind, status, created_at, updated_at
FROM network_connections WHERE status = 'active' ORDER BY id`

func (r *PostgresTopologyRepo) ListConnections(ctx context.Context) ([]domain.NetworkConnection, error) {
	rows, err := r.db.Query(ctx, listConnectionsSQL)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []domain.NetworkConnection
	for rows.Next() {
		var c domain.NetworkConnection
		if err := rows.Scan(&c.ID, &c.FromElementID, &c.ToElementID, &c.Kind, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return conns, nil
}

const insertConnectionSQL = `INSERT INTO network_connections (from_element_id, to_element_id, kind, status)
VALUES ($1, $2, $3, 'active')
RETURNING id, from_element_id, to_element_id, kind, status, created_at, updated_at`

// CreateConnection inserts a new link. Constraint violations (duplicate link,
// unknown element id) surface as *pgconn.PgError for the dispatcher to map.
func (r *PostgresTopologyRepo) CreateConnection(ctx context.Context, conn domain.NetworkConnection) (domain.NetworkConnection, error) {
	var created domain.NetworkConnection
	err := r.db.QueryRow(ctx, insertConnectionSQL, conn.FromElementID, conn.ToElementID, conn.Kind).Scan(
		&created.ID, &created.FromElementID, &created.ToElementID, &created.Kind, &created.Status, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return domain.NetworkConnection{}, fmt.Errorf("create connection: %w", err)
	}
	return created, nil
}

const disconnectSQL = `UPDATE network_connections
SET status = 'disconnected', updated_at = now()
WHERE id = $1 AND status = 'active'`

func (r *PostgresTopologyRepo) Disconnect(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, disconnectSQL, id)
	if err != nil {
		return 0, fmt.Errorf("disconnect connection: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PostgresAlarmRepo implements AlarmRepository.
type PostgresAlarmRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAlarmRepo(pool *pgxpool.Pool) *PostgresAlarmRepo {
	return &PostgresAlarmRepo{db: pool}
}

const acknowledgeAlarmSQL = `UPDATE alarms
SET acknowledged = true, acknowledged_by = $2
WHERE id = $1 AND acknowledged = false`

func (r *PostgresAlarmRepo) Acknowledge(ctx context.Context, alarmID, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, acknowledgeAlarmSQL, alarmID, userID)
	if err != nil {
		return 0, fmt.Errorf("acknowledge alarm: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PostgresAuditRepo implements AuditRepository.
type PostgresAuditRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAuditRepo(pool *pgxpool.Pool) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: pool}
}

const insertAuditSQL = `INSERT INTO audit_log (id, user_id, action, resource_table, resource_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *PostgresAuditRepo) Insert(ctx context.Context, entry domain.AuditLogEntry) error {
	if _, err := r.db.Exec(ctx, insertAuditSQL,
		entry.ID, entry.UserID, entry.Action, entry.ResourceTable, entry.ResourceID, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
