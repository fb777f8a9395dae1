package repository

import (
	"context"
	"fmt"

	"github.com/murealm/platform/internal/domain"
)

type nodeRepo struct{}

// NewNodeRepository returns a pgx-backed NodeRepository.
func NewNodeRepository() NodeRepository {
	return &nodeRepo{}
}

// Upsert replaces the whole registry entry on every heartbeat; created_at
// survives from the first registration.
func (r *nodeRepo) Upsert(ctx context.Context, db DBTX, node *domain.Node) error {
	_, err := db.Exec(ctx, `
		INSERT INTO nodes (id, node_index, node_group, host, port, users, max_users, pvp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
		  node_index = EXCLUDED.node_index,
		  node_group = EXCLUDED.node_group,
		  host = EXCLUDED.host,
		  port = EXCLUDED.port,
		  users = EXCLUDED.users,
		  max_users = EXCLUDED.max_users,
		  pvp = EXCLUDED.pvp,
		  updated_at = now()`,
		node.ID, node.Index, node.Group, node.Host, node.Port,
		node.Users, node.MaxUsers, node.PvP)
	if err != nil {
		return fmt.Errorf("upsert node: %w", err)
	}
	return nil
}

func (r *nodeRepo) List(ctx context.Context, db DBTX) ([]domain.Node, error) {
	rows, err := db.Query(ctx, `
		SELECT id, node_index, node_group, host, port, users, max_users, pvp, created_at, updated_at
		FROM nodes
		ORDER BY node_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var n domain.Node
		err := rows.Scan(&n.ID, &n.Index, &n.Group, &n.Host, &n.Port,
			&n.Users, &n.MaxUsers, &n.PvP, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan node row: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
