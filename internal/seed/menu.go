package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
)

var validate = validator.New()

// Menu is the YAML document accepted by seed-menu.
type Menu struct {
	Products []ProductEntry `yaml:"products" validate:"dive"`
	Tables   []TableEntry   `yaml:"tables" validate:"dive"`
}

type ProductEntry struct {
	Name        string `yaml:"name" validate:"required,max=100"`
	Category    string `yaml:"category" validate:"required"`
	Description string `yaml:"description" validate:"omitempty,max=1000"`
	ImageURL    string `yaml:"image_url" validate:"omitempty,url"`
	BasePrice   int64  `yaml:"base_price" validate:"required,gt=0"`
	// Price defaults to BasePrice.
	Price     *int64 `yaml:"price" validate:"omitempty,gt=0"`
	MinPrice  int64  `yaml:"min_price" validate:"required,gt=0"`
	MaxPrice  int64  `yaml:"max_price" validate:"required,gtfield=MinPrice"`
	Available *bool  `yaml:"available"`
	SortOrder int    `yaml:"sort_order" validate:"min=0"`
}

type TableEntry struct {
	Number int    `yaml:"number" validate:"required,min=1,max=999"`
	Name   string `yaml:"name" validate:"omitempty,max=50"`
	Seats  int    `yaml:"seats" validate:"required,min=1,max=50"`
}

func (e ProductEntry) Product() *model.Product {
	p := &model.Product{
		Name:      strings.TrimSpace(e.Name),
		Category:  strings.TrimSpace(e.Category),
		BasePrice: e.BasePrice,
		Price:     e.BasePrice,
		MinPrice:  e.MinPrice,
		MaxPrice:  e.MaxPrice,
		Available: true,
		SortOrder: e.SortOrder,
	}
	if e.Price != nil {
		p.Price = *e.Price
	}
	if e.Available != nil {
		p.Available = *e.Available
	}
	if e.Description != "" {
		p.Description = &e.Description
	}
	if e.ImageURL != "" {
		p.ImageURL = &e.ImageURL
	}
	return p
}

func (e TableEntry) Table() *model.Table {
	t := &model.Table{Number: e.Number, Seats: e.Seats, Status: model.TableFree}
	if e.Name != "" {
		t.Name = &e.Name
	}
	return t
}

func LoadFile(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a menu. Unknown keys are rejected.
func Parse(data []byte) (*Menu, error) {
	var m Menu
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every entry with the API's rules and rejects duplicates
// within the file.
func (m *Menu) Validate() error {
	var errs []error

	if err := validate.Struct(m); err != nil {
		errs = append(errs, fmt.Errorf("validation error: %w", err))
	}

	seen := map[string]bool{}
	for i, e := range m.Products {
		p := e.Product()
		if err := core.ValidateProduct(p); err != nil {
			errs = append(errs, fmt.Errorf("products[%d] %q: %w", i, e.Name, err))
		}
		key := p.Category + "/" + p.Name
		if seen[key] {
			errs = append(errs, fmt.Errorf("products[%d]: duplicate product %q in category %q", i, p.Name, p.Category))
		}
		seen[key] = true
	}

	numbers := map[int]bool{}
	for i, e := range m.Tables {
		if err := core.ValidateTable(e.Table()); err != nil {
			errs = append(errs, fmt.Errorf("tables[%d]: %w", i, err))
		}
		if numbers[e.Number] {
			errs = append(errs, fmt.Errorf("tables[%d]: duplicate table number %d", i, e.Number))
		}
		numbers[e.Number] = true
	}

	return errors.Join(errs...)
}
