package pricing

import (
	"testing"

	"dentalmarket/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	line := models.CartLine{
		ProductID: 1,
		Name:      "Dental Chair Model A",
		UnitPrice: 15000000, // 150000.00
		Quantity:  1,
		SelectedInclusions: []models.SelectedInclusion{
			{InclusionID: 7, Name: "Warranty", Price: 500000}, // 5000.00
		},
	}

	assert.Equal(t, int64(15500000), LineTotal(line))
}

func TestLineTotalQuantityMultipliesInclusions(t *testing.T) {
	line := models.CartLine{
		ProductID: 2,
		UnitPrice: 100000,
		Quantity:  3,
		SelectedInclusions: []models.SelectedInclusion{
			{InclusionID: 1, Price: 2500},
			{InclusionID: 2, Price: 1500},
		},
	}

	// (1000.00 + 25.00 + 15.00) * 3
	assert.Equal(t, int64(312000), LineTotal(line))
}

func TestLineTotalWithoutInclusions(t *testing.T) {
	line := models.CartLine{ProductID: 3, UnitPrice: 9999, Quantity: 2}
	assert.Equal(t, int64(19998), LineTotal(line))
}

func TestCartTotal(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: 1, UnitPrice: 15000000, Quantity: 1,
			SelectedInclusions: []models.SelectedInclusion{{InclusionID: 7, Price: 500000}}},
		{ProductID: 2, UnitPrice: 100000, Quantity: 2},
	}

	assert.Equal(t, int64(15700000), CartTotal(lines))
}

func TestCartTotalEmpty(t *testing.T) {
	assert.Equal(t, int64(0), CartTotal(nil))
	assert.Equal(t, int64(0), CartTotal([]models.CartLine{}))
}

func TestOrderItemTotal(t *testing.T) {
	item := models.OrderItem{
		ProductID: 1,
		Price:     15000000,
		Quantity:  1,
		IncludedItems: []models.OrderItemInclusion{
			{Name: "Warranty", Price: 500000},
		},
	}

	assert.Equal(t, int64(15500000), OrderItemTotal(item))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "155000.00", FormatAmount(15500000))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "1.50", FormatAmount(150))
	assert.Equal(t, "-12.34", FormatAmount(-1234))
}
