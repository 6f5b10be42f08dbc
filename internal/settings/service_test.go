package settings

import (
	"context"
	"testing"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"gorm.io/gorm"
)

type fakeRepo struct {
	stored *models.Setting
	getErr error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Get(ctx context.Context) (*models.Setting, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.stored, nil
}

func (f *fakeRepo) Save(ctx context.Context, setting *models.Setting) error {
	f.stored = setting
	return nil
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc, err := NewService(&fakeRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	setting, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if setting.MonitorDelayMS != 3000 || setting.MinPriority != "medium" {
		t.Fatalf("unexpected defaults: %+v", setting)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepo{})
	ctx := context.Background()

	base := UpdateParams{
		MonitorDelayMS:         3000,
		RetryDelayMS:           3000,
		MinConfidence:          0.7,
		MinPriority:            "medium",
		MaxConcurrentCheckouts: 3,
	}

	cases := []struct {
		name   string
		mutate func(*UpdateParams)
	}{
		{"monitor delay too low", func(p *UpdateParams) { p.MonitorDelayMS = 50 }},
		{"retry delay too low", func(p *UpdateParams) { p.RetryDelayMS = 0 }},
		{"confidence above one", func(p *UpdateParams) { p.MinConfidence = 1.5 }},
		{"unknown priority", func(p *UpdateParams) { p.MinPriority = "extreme" }},
		{"plain http webhook", func(p *UpdateParams) {
			url := "http://hooks.example.com/x"
			p.WebhookURL = &url
		}},
		{"zero concurrent checkouts", func(p *UpdateParams) { p.MaxConcurrentCheckouts = 0 }},
		{"too many concurrent checkouts", func(p *UpdateParams) { p.MaxConcurrentCheckouts = 100 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := base
			tc.mutate(&params)
			_, err := svc.Update(ctx, params)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestUpdatePersistsNormalizedValues(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := NewService(repo)

	url := "  https://discord.com/api/webhooks/1/x  "
	captchaKey := "  abc123  "
	blankKey := "   "
	setting, err := svc.Update(context.Background(), UpdateParams{
		MonitorDelayMS:         2000,
		RetryDelayMS:           1000,
		AutoTasksEnabled:       true,
		MinConfidence:          0.9,
		MinPriority:            "high",
		WebhookURL:             &url,
		MaxConcurrentCheckouts: 5,
		TwoCaptchaKey:          &captchaKey,
		CapMonsterKey:          &blankKey,
		TLSSpoof:               true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if setting.WebhookURL == nil || *setting.WebhookURL != "https://discord.com/api/webhooks/1/x" {
		t.Fatalf("webhook url not trimmed: %v", setting.WebhookURL)
	}
	if setting.TwoCaptchaKey == nil || *setting.TwoCaptchaKey != "abc123" {
		t.Fatalf("captcha key not trimmed: %v", setting.TwoCaptchaKey)
	}
	if setting.CapMonsterKey != nil {
		t.Fatalf("blank captcha key should be cleared: %v", setting.CapMonsterKey)
	}
	if repo.stored == nil || repo.stored.MinPriority != "high" {
		t.Fatalf("settings not persisted: %+v", repo.stored)
	}
}
