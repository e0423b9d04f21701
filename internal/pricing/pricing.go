// Package pricing, sepet ve sipariş tutarlarını hesaplar. Tüm tutarlar
// centavo (kuruş) cinsinden int64 olarak tutulur; ondalık gösterim sadece
// ekrana yazarken üretilir.
package pricing

import (
	"fmt"

	"dentalmarket/internal/models"
)

// LineTotal, bir sepet satırının efektif tutarını döndürür:
// (birim fiyat + seçilen ek ürünlerin toplamı) * adet.
func LineTotal(line models.CartLine) int64 {
	unit := line.UnitPrice
	for _, inc := range line.SelectedInclusions {
		unit += inc.Price
	}
	return unit * int64(line.Quantity)
}

// CartTotal, tüm satırların efektif tutarlarının toplamını döndürür.
// Her mutasyondan sonra satırlardan yeniden hesaplanır, asla artımlı
// güncellenmez.
func CartTotal(lines []models.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += LineTotal(line)
	}
	return total
}

// OrderItemTotal, sipariş satırının efektif tutarını döndürür.
func OrderItemTotal(item models.OrderItem) int64 {
	unit := item.Price
	for _, inc := range item.IncludedItems {
		unit += inc.Price
	}
	return unit * int64(item.Quantity)
}

// FormatAmount, centavo tutarını ondalık para gösterimine çevirir.
// Örn: 15500000 -> "155000.00"
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
