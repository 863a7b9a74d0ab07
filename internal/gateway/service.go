// AngelaMos | 2026
// service.go

package gateway

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

var ErrGatewayNotFound = core.NewDomainError(
	core.ErrNotFound,
	"GATEWAY_NOT_FOUND",
	"payment gateway not found",
)

type Service struct {
	repo  Repository
	tx    TxRunner
	guard Guard
}

func NewService(repo Repository, tx TxRunner, guard Guard) *Service {
	return &Service{repo: repo, tx: tx, guard: guard}
}

func (s *Service) List(ctx context.Context) ([]Gateway, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Gateway, error) {
	gw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAsDomain(err)
	}
	return gw, nil
}

// Create fails with ErrGatewayLimitExceeded instead of storing a pre-enabled
// gateway disabled.
func (s *Service) Create(
	ctx context.Context,
	req CreateGatewayRequest,
) (*Gateway, error) {
	gw := &Gateway{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Provider:    req.Provider,
		IsEnabled:   req.IsEnabled,
		Methods:     uniqueMethods(req.Methods),
		Credentials: Credentials(req.Credentials),
	}

	err := s.tx.WithinLock(ctx, func(repo Repository) error {
		if gw.IsEnabled {
			if err := s.checkActivation(ctx, repo, gw.ID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, gw)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "gateway created",
		"gateway_id", gw.ID,
		"provider", gw.Provider,
		"enabled", gw.IsEnabled,
	)

	return gw, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateGatewayRequest,
) (*Gateway, error) {
	var gw *Gateway

	err := s.tx.WithinLock(ctx, func(repo Repository) error {
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFoundAsDomain(err)
		}

		if req.Title != nil {
			current.Title = *req.Title
		}
		if req.Provider != nil {
			current.Provider = *req.Provider
		}
		if req.Methods != nil {
			current.Methods = uniqueMethods(req.Methods)
		}
		if req.Credentials != nil {
			current.Credentials = unmaskCredentials(req.Credentials, current.Credentials)
		}
		if req.IsEnabled != nil {
			if *req.IsEnabled {
				if err := s.checkActivation(ctx, repo, current.ID); err != nil {
					return err
				}
			}
			current.IsEnabled = *req.IsEnabled
		}

		if err := repo.Update(ctx, current); err != nil {
			return notFoundAsDomain(err)
		}
		gw = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return gw, nil
}

// Toggle flips is_enabled; enabling goes through the same guard as create
// and update.
func (s *Service) Toggle(ctx context.Context, id string) (*Gateway, error) {
	var gw *Gateway

	err := s.tx.WithinLock(ctx, func(repo Repository) error {
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFoundAsDomain(err)
		}

		if !current.IsEnabled {
			if err := s.checkActivation(ctx, repo, current.ID); err != nil {
				return err
			}
		}
		current.IsEnabled = !current.IsEnabled

		if err := repo.Update(ctx, current); err != nil {
			return notFoundAsDomain(err)
		}
		gw = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "gateway toggled",
		"gateway_id", gw.ID,
		"enabled", gw.IsEnabled,
	)

	return gw, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return notFoundAsDomain(s.repo.Delete(ctx, id))
}

// EnabledMethods lists the payment methods offered by at least one enabled
// gateway, in a stable order.
func (s *Service) EnabledMethods(ctx context.Context) ([]string, error) {
	gateways, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	methods := make([]string, 0, 3)
	for _, m := range []string{MethodPix, MethodCreditCard, MethodCrypto} {
		for i := range gateways {
			if gateways[i].Supports(m) {
				methods = append(methods, m)
				break
			}
		}
	}

	return methods, nil
}

// FindEnabled returns the first enabled gateway of provider offering method.
func (s *Service) FindEnabled(
	ctx context.Context,
	provider, method string,
) (*Gateway, bool, error) {
	gateways, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, false, err
	}

	for i := range gateways {
		if gateways[i].Provider == provider && gateways[i].Supports(method) {
			return &gateways[i], true, nil
		}
	}

	return nil, false, nil
}

func (s *Service) checkActivation(
	ctx context.Context,
	repo Repository,
	targetID string,
) error {
	enabled, err := repo.CountEnabledExcluding(ctx, targetID)
	if err != nil {
		return err
	}
	return s.guard.CheckActivation(enabled)
}

func uniqueMethods(methods []string) Methods {
	out := make(Methods, 0, len(methods))
	for _, m := range methods {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func notFoundAsDomain(err error) error {
	if err != nil && core.IsNotFound(err) {
		return ErrGatewayNotFound
	}
	return err
}

// unmaskCredentials replaces the submitted credentials. A value equal to the
// masked form of the stored one is the read response echoed back and keeps
// the stored secret; keys left out are dropped.
func unmaskCredentials(submitted map[string]string, stored Credentials) Credentials {
	out := make(Credentials, len(submitted))
	for k, v := range submitted {
		if old, ok := stored[k]; ok && v == maskSecret(old) {
			v = old
		}
		out[k] = v
	}
	return out
}
