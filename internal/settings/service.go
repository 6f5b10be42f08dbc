package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes the operator-tunable dashboard settings.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, params UpdateParams) (*models.Setting, error)
}

// UpdateParams carries the full settings payload; the row is replaced wholesale.
type UpdateParams struct {
	MonitorDelayMS      int
	RetryDelayMS        int
	AutoTasksEnabled    bool
	MinConfidence       float64
	MinPriority         string
	WebhookURL          *string
	WebhookOnNewProduct bool
	WebhookOnRestock    bool

	MaxConcurrentCheckouts int
	TwoCaptchaKey          *string
	CapMonsterKey          *string
	TLSSpoof               bool
	FingerprintRotation    bool
}

type service struct {
	repo Repository
}

// NewService wires settings dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultSetting(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	return setting, nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*models.Setting, error) {
	if params.MonitorDelayMS < 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "monitor delay must be at least 100ms")
	}
	if params.RetryDelayMS < 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retry delay must be at least 100ms")
	}
	if params.MinConfidence < 0 || params.MinConfidence > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min confidence must be between 0 and 1")
	}
	if params.MaxConcurrentCheckouts < 1 || params.MaxConcurrentCheckouts > 50 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max concurrent checkouts must be between 1 and 50")
	}
	priority, err := enums.ParsePriority(params.MinPriority)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid min priority")
	}
	if params.WebhookURL != nil {
		trimmed := strings.TrimSpace(*params.WebhookURL)
		if trimmed == "" {
			params.WebhookURL = nil
		} else if !strings.HasPrefix(trimmed, "https://") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook url must use https")
		} else {
			params.WebhookURL = &trimmed
		}
	}
	params.TwoCaptchaKey = normalizeSecret(params.TwoCaptchaKey)
	params.CapMonsterKey = normalizeSecret(params.CapMonsterKey)

	setting := &models.Setting{
		MonitorDelayMS:      params.MonitorDelayMS,
		RetryDelayMS:        params.RetryDelayMS,
		AutoTasksEnabled:    params.AutoTasksEnabled,
		MinConfidence:       params.MinConfidence,
		MinPriority:         string(priority),
		WebhookURL:          params.WebhookURL,
		WebhookOnNewProduct: params.WebhookOnNewProduct,
		WebhookOnRestock:    params.WebhookOnRestock,

		MaxConcurrentCheckouts: params.MaxConcurrentCheckouts,
		TwoCaptchaKey:          params.TwoCaptchaKey,
		CapMonsterKey:          params.CapMonsterKey,
		TLSSpoof:               params.TLSSpoof,
		FingerprintRotation:    params.FingerprintRotation,
	}
	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return setting, nil
}

func normalizeSecret(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func defaultSetting() *models.Setting {
	return &models.Setting{
		ID:                  singletonID,
		MonitorDelayMS:      3000,
		RetryDelayMS:        3000,
		AutoTasksEnabled:    false,
		MinConfidence:       0.7,
		MinPriority:         string(enums.PriorityMedium),
		WebhookOnNewProduct: true,
		WebhookOnRestock:    true,

		MaxConcurrentCheckouts: 3,
		TLSSpoof:               true,
		FingerprintRotation:    true,
	}
}
