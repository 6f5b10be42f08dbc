package proxies

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/pkg/db"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"gorm.io/gorm"
)

// Checker probes a single proxy for liveness.
type Checker interface {
	Check(ctx context.Context, proxy Proxy) error
}

// Service manages proxy groups and their health checks.
type Service interface {
	CreateGroup(ctx context.Context, name, rawProxies string) (*models.ProxyGroup, int, error)
	ListGroups(ctx context.Context) ([]models.ProxyGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	PoolFor(ctx context.Context, id uuid.UUID) (*Pool, error)
	TestGroup(ctx context.Context, id uuid.UUID) (*TestResult, error)
}

// TestResult summarizes a group health check.
type TestResult struct {
	Group   string `json:"group"`
	Total   int    `json:"total"`
	Alive   int    `json:"alive"`
	Dead    int    `json:"dead"`
	Invalid int    `json:"invalid"`
}

type service struct {
	repo    Repository
	checker Checker
}

// NewService wires proxy dependencies.
func NewService(repo Repository, checker Checker) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "proxies repository required")
	}
	if checker == nil {
		checker = &dialChecker{timeout: 5 * time.Second}
	}
	return &service{repo: repo, checker: checker}, nil
}

func (s *service) CreateGroup(ctx context.Context, name, rawProxies string) (*models.ProxyGroup, int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "group name required")
	}

	parsed, rejected := ParseList(rawProxies)
	if len(parsed) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "no valid proxies in input").
			WithDetails(map[string]any{"rejected": rejected})
	}

	lines := make([]string, 0, len(parsed))
	for _, p := range parsed {
		line := p.Addr()
		if p.Username != "" {
			line += ":" + p.Username + ":" + p.Password
		}
		lines = append(lines, line)
	}

	group := &models.ProxyGroup{
		ID:      uuid.New(),
		Name:    name,
		Proxies: lines,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		if db.IsUniqueViolation(err, "uniq_proxy_groups_name") {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "group name already exists")
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create proxy group")
	}
	return group, len(parsed), nil
}

func (s *service) ListGroups(ctx context.Context) ([]models.ProxyGroup, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proxy groups")
	}
	return groups, nil
}

func (s *service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete proxy group")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "proxy group not found")
	}
	return nil
}

func (s *service) PoolFor(ctx context.Context, id uuid.UUID) (*Pool, error) {
	group, err := s.loadGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	parsed, _ := ParseList(strings.Join(group.Proxies, "\n"))
	return NewPool(parsed), nil
}

// TestGroup probes every proxy in the group concurrently.
func (s *service) TestGroup(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	group, err := s.loadGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	parsed, rejected := ParseList(strings.Join(group.Proxies, "\n"))
	result := &TestResult{
		Group:   group.Name,
		Total:   len(group.Proxies),
		Invalid: len(rejected),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, proxy := range parsed {
		wg.Add(1)
		go func(p Proxy) {
			defer wg.Done()
			err := s.checker.Check(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Dead++
			} else {
				result.Alive++
			}
		}(proxy)
	}
	wg.Wait()

	return result, nil
}

func (s *service) loadGroup(ctx context.Context, id uuid.UUID) (*models.ProxyGroup, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	group, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proxy group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proxy group")
	}
	return group, nil
}

// dialChecker verifies reachability with a plain TCP dial.
type dialChecker struct {
	timeout time.Duration
}

func (c *dialChecker) Check(ctx context.Context, proxy Proxy) error {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", proxy.Addr())
	if err != nil {
		return err
	}
	return conn.Close()
}
