package products

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phantomlabs/phantom-backend/pkg/db/models"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepo struct {
	products []models.CuratedProduct
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, product *models.CuratedProduct) error {
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeRepo) CreateBatch(ctx context.Context, products []models.CuratedProduct) error {
	f.products = append(f.products, products...)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*models.CuratedProduct, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) List(ctx context.Context, params listProductsParams) ([]models.CuratedProduct, *pagination.Cursor, error) {
	return f.products, nil, nil
}

func (f *fakeRepo) All(ctx context.Context) ([]models.CuratedProduct, error) {
	return f.products, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := NewService(&fakeRepo{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Name: "", Keywords: []string{"x"}})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	_, err = svc.Create(ctx, CreateParams{Name: "Panda Dunk"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing keywords, got %v", err)
	}

	_, err = svc.Create(ctx, CreateParams{Name: "Panda Dunk", Keywords: []string{"panda dunk"}, Priority: "wild"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad priority, got %v", err)
	}
}

func TestCreateNormalizesBrandAndDefaults(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := NewService(repo)

	product, err := svc.Create(context.Background(), CreateParams{
		Name:     "  Panda Dunk  ",
		Brand:    " Nike ",
		Keywords: []string{"panda dunk"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Name != "Panda Dunk" || product.Brand != "nike" {
		t.Fatalf("normalization failed: %+v", product)
	}
	if product.Priority != enums.PriorityMedium {
		t.Fatalf("expected medium default priority, got %s", product.Priority)
	}
	if !product.Enabled {
		t.Fatal("new products should be enabled")
	}
}

func TestHighPriorityIncludesBigProfitSpreads(t *testing.T) {
	repo := &fakeRepo{products: []models.CuratedProduct{
		{Name: "high", Priority: enums.PriorityHigh, Enabled: true},
		{
			Name:        "profitable",
			Priority:    enums.PriorityMedium,
			Enabled:     true,
			RetailPrice: decimal.NewFromInt(100),
			ResalePrice: decimal.NewFromInt(300),
		},
		{
			Name:        "thin margin",
			Priority:    enums.PriorityMedium,
			Enabled:     true,
			RetailPrice: decimal.NewFromInt(100),
			ResalePrice: decimal.NewFromInt(150),
		},
		{Name: "disabled", Priority: enums.PriorityHigh, Enabled: false},
	}}
	svc, _ := NewService(repo)

	out, err := svc.HighPriority(context.Background())
	if err != nil {
		t.Fatalf("high priority: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 products, got %d", len(out))
	}
	names := map[string]bool{}
	for _, p := range out {
		names[p.Name] = true
	}
	if !names["high"] || !names["profitable"] {
		t.Fatalf("unexpected selection: %v", names)
	}
}

func TestImportSkipsInvalidEntries(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := NewService(repo)

	payload := `{
		"keywords_by_shoe": [
			{"name": "Panda Dunk", "brand": "Nike", "positive_keywords": ["panda dunk"], "retail_price": 100, "current_price": 180, "priority": "medium"},
			{"name": "", "positive_keywords": ["orphan"]},
			{"name": "No Keywords", "positive_keywords": []},
			{"name": "Bad Priority", "positive_keywords": ["x y z"], "priority": "mega"}
		]
	}`

	count, err := svc.Import(context.Background(), strings.NewReader(payload))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported, got %d", count)
	}
	for _, p := range repo.products {
		if p.Name == "Bad Priority" && p.Priority != enums.PriorityMedium {
			t.Fatalf("expected fallback priority medium, got %s", p.Priority)
		}
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	svc, _ := NewService(&fakeRepo{})
	_, err := svc.Import(context.Background(), strings.NewReader("{not json"))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSeedBuiltinOnlyOnEmptyCatalog(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := NewService(repo)
	ctx := context.Background()

	count, err := svc.SeedBuiltin(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if count == 0 {
		t.Fatal("expected builtin catalog to be seeded")
	}

	again, err := svc.SeedBuiltin(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected no reseeding, got %d", again)
	}
}

func TestDeleteMissingProduct(t *testing.T) {
	svc, _ := NewService(&fakeRepo{})
	err := svc.Delete(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
