package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/metrics"
	"github.com/rs/zerolog/log"
)

const DefaultAdmissionTimeout = 5 * time.Second

// Gate decides whether a transport connection may take part in signaling.
// Every failure looks the same to the client; the reason is only logged.
type Gate struct {
	Store   core.AccessStore
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// Admit parses the raw session cookie and checks the claim against the access store.
// Store failures refuse the connection.
func (g *Gate) Admit(ctx context.Context, session string) (domain.Claim, error) {
	claim, err := domain.ParseSession(session)
	if err != nil {
		g.reject(err)
		return domain.Claim{}, err
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultAdmissionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := g.Store.HasAccess(ctx, claim)
	if err != nil {
		err = fmt.Errorf("check access: %w", err)
		g.Metrics.Admission(metrics.AdmissionStoreError)
		log.Error().Err(err).Str("module", "app.admission").
			Str("participant", claim.Participant).Str("room", claim.Room).Msg("access store failure, refusing")
		return domain.Claim{}, err
	}
	if !ok {
		g.reject(domain.ErrNotAuthorized)
		log.Warn().Str("module", "app.admission").
			Str("participant", claim.Participant).Str("room", claim.Room).Msg("participant not allowed in room")
		return domain.Claim{}, domain.ErrNotAuthorized
	}

	g.Metrics.Admission(metrics.AdmissionAccepted)
	log.Info().Str("module", "app.admission").
		Str("participant", claim.Participant).Str("room", claim.Room).Msg("admitted")
	return claim, nil
}

func (g *Gate) reject(err error) {
	switch {
	case errors.Is(err, domain.ErrNoSession):
		g.Metrics.Admission(metrics.AdmissionNoSession)
		log.Warn().Str("module", "app.admission").Msg("session cookie not found, access unauthorized")
	case errors.Is(err, domain.ErrNotAuthorized):
		g.Metrics.Admission(metrics.AdmissionDenied)
	default:
		g.Metrics.Admission(metrics.AdmissionMalformed)
		log.Warn().Err(err).Str("module", "app.admission").Msg("rejecting malformed session")
	}
}
