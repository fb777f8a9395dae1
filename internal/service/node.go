package service

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/repository"
)

// NodeService keeps the game node registry fresh.
type NodeService struct {
	pool  *pgxpool.Pool
	nodes repository.NodeRepository
}

// NewNodeService creates a new NodeService.
func NewNodeService(pool *pgxpool.Pool, nodes repository.NodeRepository) *NodeService {
	return &NodeService{pool: pool, nodes: nodes}
}

// Heartbeat registers or refreshes a node. Every call overwrites the full
// entry; nothing is reconciled.
func (s *NodeService) Heartbeat(ctx context.Context, node domain.Node) error {
	if err := domain.ValidateHeartbeat(node); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if err := s.nodes.Upsert(ctx, s.pool, &node); err != nil {
		return domain.ErrInternal("upsert node", err)
	}
	return nil
}

// List returns all registered nodes ordered by index.
func (s *NodeService) List(ctx context.Context) ([]domain.Node, error) {
	nodes, err := s.nodes.List(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list nodes", err)
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	return nodes, nil
}
