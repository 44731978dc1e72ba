package repository

import (
	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/httpclient"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/postgres"
	postgresRepo "github.com/flexprice/tariff/internal/repository/postgres"
	remoteRepo "github.com/flexprice/tariff/internal/repository/remote"
	"github.com/flexprice/tariff/internal/types"
	"go.uber.org/fx"
)

type RepositoryParams struct {
	fx.In

	Config *config.Configuration
	Logger *logger.Logger
	DB     *postgres.DB      `optional:"true"`
	Client httpclient.Client `optional:"true"`
}

// NewTariffPlanRepository picks the plan store of the configured run mode
func NewTariffPlanRepository(p RepositoryParams) (tariffplan.Repository, error) {
	switch p.Config.Deployment.Mode {
	case types.ModeRemote:
		if p.Client == nil {
			return nil, ierr.NewError("http client is required in remote mode").
				Mark(ierr.ErrSystem)
		}
		return remoteRepo.NewTariffPlanRepository(p.Client, p.Config.PlanStore, p.Logger), nil
	default:
		if p.DB == nil {
			return nil, ierr.NewErrorf("database is required in %s mode", p.Config.Deployment.Mode).
				Mark(ierr.ErrSystem)
		}
		return postgresRepo.NewTariffPlanRepository(p.DB, p.Logger), nil
	}
}
