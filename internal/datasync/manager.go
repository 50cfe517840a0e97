package datasync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/osaleh/aidesk/internal/api"
)

// Resource keys tracked by the sync layer.
const (
	KeyDashboardStats   = "dashboard-stats"
	KeyEngagement       = "dashboard-engagement"
	KeyPendingApprovals = "approvals-pending"
	KeyBusinessProfile  = "business-profile"
)

// Default staleness windows. Approvals and the business profile refresh
// only on demand, after initial load or invalidation.
const (
	DefaultStatsTTL      = 30 * time.Second
	DefaultEngagementTTL = 15 * time.Second
)

// Options tunes the manager.
type Options struct {
	StatsTTL      time.Duration
	EngagementTTL time.Duration
	// OnAuthRejected is called when any fetch or mutation comes back
	// authentication-rejected. The session controller hooks its logout
	// transition here.
	OnAuthRejected func()
}

// Manager owns one Query per tracked resource and the mutation
// operations whose confirmations invalidate them.
type Manager struct {
	client         *api.Client
	logger         *zap.Logger
	onAuthRejected func()

	Stats      *Query[*api.DashboardStats]
	Engagement *Query[[]api.EngagementEvent]
	Pending    *Query[[]api.ApprovalItem]
	Profile    *Query[*api.BusinessProfile]
}

// NewManager wires the resource queries against the backend client.
func NewManager(client *api.Client, logger *zap.Logger, opts Options) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = DefaultStatsTTL
	}
	if opts.EngagementTTL <= 0 {
		opts.EngagementTTL = DefaultEngagementTTL
	}

	m := &Manager{client: client, logger: logger, onAuthRejected: opts.OnAuthRejected}

	m.Stats = newQuery(KeyDashboardStats, opts.StatsTTL, client.DashboardStats, logger, m.forward)
	m.Engagement = newQuery(KeyEngagement, opts.EngagementTTL, client.DashboardEngagement, logger, m.forward)
	m.Pending = newQuery(KeyPendingApprovals, 0, client.PendingApprovals, logger, m.forward)
	m.Profile = newQuery(KeyBusinessProfile, 0, client.BusinessProfile, logger, m.forward)

	return m
}

// forward propagates auth rejections to the session controller. Errors
// are never swallowed here; the initiating caller still receives them.
func (m *Manager) forward(err error) {
	if api.IsAuthRejected(err) && m.onAuthRejected != nil {
		m.onAuthRejected()
	}
}

// DecideApproval submits one approve/reject decision. The pending cache
// is invalidated on success and also on a conflict, so the next read
// reflects the backend's final word even when another operator got
// there first. The mutation runs exactly once; no implicit retry.
func (m *Manager) DecideApproval(ctx context.Context, id string, status api.ApprovalStatus) (*api.ApprovalItem, error) {
	item, err := m.client.UpdateApproval(ctx, id, status)
	if err != nil {
		m.forward(err)
		if api.IsConflict(err) {
			m.Pending.Invalidate()
		}
		return nil, err
	}
	m.logger.Info("approval decided", zap.String("id", id), zap.String("status", string(status)))
	m.Pending.Invalidate()
	return item, nil
}

// SaveProfile applies a partial business-profile update and invalidates
// the cached profile so the next read re-fetches the confirmed copy.
func (m *Manager) SaveProfile(ctx context.Context, update api.ProfileUpdate) (*api.BusinessProfile, error) {
	profile, err := m.client.UpdateBusinessProfile(ctx, update)
	if err != nil {
		m.forward(err)
		return nil, err
	}
	m.logger.Info("business profile saved")
	m.Profile.Invalidate()
	return profile, nil
}
