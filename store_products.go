package mkmtrees

import (
	"context"
	"database/sql"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search    string
	Category  string
	Available *bool
	SortBy    string
	SortOrder string
}

var productSorts = map[string]string{
	"name":       "name",
	"price":      "price",
	"sort_order": "sort_order",
	"created_at": "created_at",
}

const productColumns = `id, name, slug, description, category, price, price_unit, available, sort_order,
	created_at, updated_at`

func scanProduct(s paging.Scanner) (Product, error) {
	var p Product
	var price sql.NullFloat64
	err := s.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &price, &p.PriceUnit, &p.Available,
		&p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	p.Price = nullFloat(price)
	return p, err
}

// ListProducts returns one page of products.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter, p paging.Params) (paging.Result[Product], error) {
	var w paging.Filter
	w.Search(f.Search, "name", "description")
	w.WhereIf(f.Category != "", "category = ?", f.Category)
	if f.Available != nil {
		w.Where("available = ?", *f.Available)
	}
	return paging.Query(ctx, s.db, paging.Spec{
		Select:  productColumns,
		From:    "products",
		OrderBy: paging.Sort(productSorts, f.SortBy, f.SortOrder, "sort_order", "asc") + ", name ASC",
	}, &w, p, scanProduct)
}

// GetProduct returns a product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
}

// ProductSlugTaken reports whether another product already uses slug.
func (s *Store) ProductSlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.slugTaken(ctx, "products", "slug", slug, excludeID)
}

// CreateProduct inserts p.
func (s *Store) CreateProduct(ctx context.Context, p Product) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO products
		(name, slug, description, category, price, price_unit, available, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.Description, p.Category, argFloat(p.Price), p.PriceUnit, p.Available, p.SortOrder,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProduct writes every column of p.
func (s *Store) UpdateProduct(ctx context.Context, p Product) error {
	_, err := s.db.ExecContext(ctx, `UPDATE products SET
		name = ?, slug = ?, description = ?, category = ?, price = ?, price_unit = ?, available = ?, sort_order = ?,
		updated_at = ? WHERE id = ?`,
		p.Name, p.Slug, p.Description, p.Category, argFloat(p.Price), p.PriceUnit, p.Available, p.SortOrder,
		p.UpdatedAt, p.ID)
	return err
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "products", id)
}
