package models

import "time"

// Quotation, bir ürün için fiyat teklifi talebini temsil eder.
type Quotation struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"` // "new", "answered", "closed"
	CreatedAt time.Time `json:"created_at"`
}

// QuotationForm, teklif talebi form verilerini temsil eder.
type QuotationForm struct {
	ProductID int    `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Message   string `json:"message" binding:"required"`
}
