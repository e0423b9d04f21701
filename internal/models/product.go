package models

import (
	"time"
)

// Product, katalogdaki bir ürünü temsil eder. Fiyatlar centavo cinsindendir.
type Product struct {
	ID          int                `json:"id" db:"id"`
	Name        string             `json:"name" db:"name"`
	Description string             `json:"description" db:"description"`
	Price       int64              `json:"price" db:"price"`
	Image       string             `json:"image" db:"image"`
	Category    string             `json:"category" db:"category"`
	Stock       int                `json:"stock" db:"stock"`
	Featured    bool               `json:"featured" db:"featured"`
	Features    []string           `json:"features" db:"features"`
	Inclusions  []ProductInclusion `json:"inclusions"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// ProductInclusion, ürünle birlikte seçilebilen opsiyonel ek ürünü temsil eder.
type ProductInclusion struct {
	ID          int    `json:"id" db:"id"`
	ProductID   int    `json:"product_id" db:"product_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Price       int64  `json:"price" db:"price"`
}

// ProductForm, admin panelinden gelen ürün form verilerini temsil eder.
type ProductForm struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Price       int64                  `json:"price" binding:"required"`
	Image       string                 `json:"image"`
	Category    string                 `json:"category" binding:"required"`
	Stock       int                    `json:"stock"`
	Featured    bool                   `json:"featured"`
	Features    []string               `json:"features"`
	Inclusions  []ProductInclusionForm `json:"inclusions"`
}

// ProductInclusionForm, ürün formundaki ek ürün satırını temsil eder.
type ProductInclusionForm struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}
