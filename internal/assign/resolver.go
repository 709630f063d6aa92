package assign

import (
	"context"
	"fmt"

	"leadbridge/internal/crm"
	"leadbridge/platform/apperr"
	"leadbridge/platform/logger"
)

// Backup agent: every lead is always assigned to someone.
const (
	BackupAgentID   = "9pXq0rOQJOUWOxDmnMHP"
	BackupAgentName = "Willow Sweet"
)

// Directory resolves team members against the CRM. Satisfied by *crm.Client.
type Directory interface {
	FindUserByEmail(ctx context.Context, email string) (*crm.User, error)
}

// Oracle recommends agents for a listing inquiry. Satisfied by *OracleClient.
type Oracle interface {
	Recommend(ctx context.Context, q Query) (Recommendation, error)
}

// Resolver implements the assignment decision order: explicit selection
// first, oracle recommendation second, backup agent last.
type Resolver struct {
	directory Directory
	oracle    Oracle
	enabled   bool
	log       *logger.Logger
}

// NewResolver creates a resolver. When the oracle is not configured the
// auto path degrades straight to the backup agent.
func NewResolver(directory Directory, oracle Oracle, oracleEnabled bool, log *logger.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		oracle:    oracle,
		enabled:   oracleEnabled,
		log:       log,
	}
}

// ResolveManual resolves an explicitly selected agent email against the team
// directory. A bad explicit selection must surface, not silently degrade, so
// a miss is a hard assignment error rather than a fallback.
func (r *Resolver) ResolveManual(ctx context.Context, email string) (string, error) {
	member, err := r.directory.FindUserByEmail(ctx, email)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "team directory lookup failed", err).WithOp("assign.ResolveManual")
	}
	if member == nil {
		return "", apperr.Assignment(fmt.Sprintf("selected realtor %s not found in team directory", email))
	}

	r.log.Info("assignment resolved", "path", "manual", "agent_id", member.ID)
	return member.ID, nil
}

// ResolveAuto consults the oracle for a listing inquiry and resolves its
// candidates against the directory: primary first, then alternates in order.
// When no candidate resolves, the backup agent wins.
func (r *Resolver) ResolveAuto(ctx context.Context, q Query) (string, error) {
	if !r.enabled {
		r.log.Info("assignment resolved", "path", "backup", "reason", "oracle disabled", "agent_id", BackupAgentID)
		return BackupAgentID, nil
	}

	rec, err := r.oracle.Recommend(ctx, q)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "auto-assign oracle call failed", err).WithOp("assign.ResolveAuto")
	}

	candidates := make([]string, 0, len(rec.PossibleRealtors)+1)
	if rec.AssignedRealtor != "" {
		candidates = append(candidates, rec.AssignedRealtor)
	}
	candidates = append(candidates, rec.PossibleRealtors...)

	for _, candidate := range candidates {
		member, err := r.directory.FindUserByEmail(ctx, candidate)
		if err != nil {
			return "", apperr.Wrap(apperr.KindUpstream, "team directory lookup failed", err).WithOp("assign.ResolveAuto")
		}
		if member != nil {
			r.log.Info("assignment resolved", "path", "oracle", "candidate", candidate, "agent_id", member.ID)
			return member.ID, nil
		}
	}

	r.log.Info("assignment resolved", "path", "backup", "reason", "no oracle candidate in directory", "agent_id", BackupAgentID)
	return BackupAgentID, nil
}
