package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type savedProduct struct {
	product    domain.Product
	attributes []domain.AttributePrice
}

type stubProductRepo struct {
	items []savedProduct
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product, attrs []domain.AttributePrice) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, savedProduct{product: p, attributes: attrs})
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,title,description,category,price,imageUrl,attribute,attributePrice
1,Cute Otter Amigurumi,An adorable otter,Amigurumi,28.50,images/otter.png,Small,28.50
,,,,,,Medium,32.50
,,,,,,Large,36.50
4,Blue Whale Pouch,"A pouch, shaped like a whale",Bags & Pouches,22,images/whale_pouch.png,,
6,Crochet Sylveon Plushie,,Amigurumi,45,images/sylveon.png,,
,,,,,,Small,
`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(repo.items) != 3 {
		t.Fatalf("expected 3 products imported, got %d (saved %d)", count, len(repo.items))
	}

	otter := repo.items[0]
	if otter.product.ID != 1 || otter.product.Title != "Cute Otter Amigurumi" || otter.product.Price != 28.5 || otter.product.ImageURL != "images/otter.png" {
		t.Fatalf("unexpected product data: %+v", otter.product)
	}
	if len(otter.attributes) != 3 || otter.attributes[2].AttributeValue != "Large" || otter.attributes[2].Price != 36.5 {
		t.Fatalf("unexpected attributes: %+v", otter.attributes)
	}

	whale := repo.items[1]
	if whale.product.Description != "A pouch, shaped like a whale" || whale.product.Category != "Bags & Pouches" {
		t.Fatalf("unexpected product data: %+v", whale.product)
	}
	if whale.attributes != nil {
		t.Fatalf("expected nil attributes to keep stored prices, got %+v", whale.attributes)
	}

	sylveon := repo.items[2]
	if len(sylveon.attributes) != 1 || sylveon.attributes[0].Price != 45 {
		t.Fatalf("expected attribute to default to base price, got %+v", sylveon.attributes)
	}
}

func TestCSVImporter_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing column":   "id,title\n1,Otter\n",
		"bad id":           "id,title,price\nabc,Otter,1\n",
		"bad price":        "id,title,price\n1,Otter,cheap\n",
		"negative price":   "id,title,price\n1,Otter,-2\n",
		"missing title":    "id,title,price\n1,,2\n",
		"orphan attribute": "id,title,price,attribute,attributePrice\n,,,Small,3\n",
		"nan price":        "id,title,price\n1,Otter,NaN\n",
		"infinite price":   "id,title,price\n1,Otter,+Inf\n",
		"nan attribute":    "id,title,price,attribute,attributePrice\n1,Otter,2,Small,nan\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubProductRepo{}
			if _, err := NewCSVImporter(strings.NewReader(data), repo, nil).Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
			if len(repo.items) != 0 {
				t.Fatalf("expected nothing saved, got %d", len(repo.items))
			}
		})
	}
}

func TestCSVImporter_WriterError(t *testing.T) {
	repo := &stubProductRepo{err: errors.New("db down")}
	_, err := NewCSVImporter(strings.NewReader("id,title,price\n1,Otter,2\n"), repo, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected writer error, got %v", err)
	}
}
