// Package cart, alışveriş sepetini yönetir. Her alışverişçi kimliği
// (misafir oturumu veya kullanıcı adı) kendi izole sepet slotuna sahiptir.
package cart

import (
	"log"
	"sync"

	"dentalmarket/internal/models"
	"dentalmarket/internal/pricing"
)

// Storage, kimlik başına sepet slotlarını kalıcı hale getirir.
type Storage interface {
	Load(identity string) (models.Cart, error)
	Save(identity string, cart models.Cart) error
	Delete(identity string) error
}

// Store, tek bir alışverişçi kimliğine bağlı sepet durumunu tutar.
// Tüm geçişler saf fonksiyonlarla yeni bir anlık görüntü üretir; kalıcılık
// geçişten sonra ayrı bir adım olarak uygulanır.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	identity string
	state    models.Cart
}

// NewStore, verilen kimliğin slotunu yükleyerek yeni bir Store oluşturur.
// Slot yoksa veya bozuksa boş sepetle başlar.
func NewStore(storage Storage, identity string) *Store {
	s := &Store{
		storage:  storage,
		identity: identity,
	}
	s.state = loadOrEmpty(storage, identity)
	return s
}

func loadOrEmpty(storage Storage, identity string) models.Cart {
	state, err := storage.Load(identity)
	if err != nil {
		// Bozuk slot boş sepet sayılır, hata yukarı taşınmaz.
		log.Printf("Store.loadOrEmpty - Corrupt cart slot for %s, resetting: %v", identity, err)
		return emptyCart()
	}
	return state
}

func emptyCart() models.Cart {
	return models.Cart{Lines: []models.CartLine{}, Total: 0}
}

// Identity, store'un bağlı olduğu alışverişçi kimliğini döndürür.
func (s *Store) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Snapshot, sepetin bağımsız bir kopyasını döndürür.
func (s *Store) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.state)
}

// Add, sepete satır ekler. Aynı ürün zaten sepetteyse adetler toplanır ve
// ek ürün seçimi gelen satırınkiyle değiştirilir.
func (s *Store) Add(line models.CartLine) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = addLine(s.state, line)
	s.persist()
	return cloneCart(s.state)
}

// Remove, ürünü sepetten çıkarır.
func (s *Store) Remove(productID int) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = removeLine(s.state, productID)
	s.persist()
	return cloneCart(s.state)
}

// UpdateQuantity, satırın adedini doğrudan günceller. Alt/üst sınır
// uygulamaz; arayüzün >= 1 göndermesi beklenir.
func (s *Store) UpdateQuantity(productID, quantity int) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = updateQuantity(s.state, productID, quantity)
	s.persist()
	return cloneCart(s.state)
}

// Clear, sepeti boşaltır ve mevcut kimliğin slotunu siler.
func (s *Store) Clear() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = emptyCart()
	if err := s.storage.Delete(s.identity); err != nil {
		log.Printf("Store.Clear - Error deleting cart slot for %s: %v", s.identity, err)
	}
	return cloneCart(s.state)
}

// SwitchIdentity, önce mevcut sepeti kendi slotuna yazar, sonra yeni
// kimliğin slotunu yükler. Slotlar asla birleştirilmez.
func (s *Store) SwitchIdentity(identity string) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if identity == s.identity {
		return cloneCart(s.state)
	}

	s.persist()
	s.identity = identity
	s.state = loadOrEmpty(s.storage, identity)
	return cloneCart(s.state)
}

// persist, anlık görüntünün tamamını mevcut kimliğin slotuna yazar.
// mu kilitliyken çağrılır.
func (s *Store) persist() {
	if err := s.storage.Save(s.identity, cloneCart(s.state)); err != nil {
		log.Printf("Store.persist - Error saving cart for %s: %v", s.identity, err)
	}
}

// --- Saf geçiş fonksiyonları ---

func addLine(state models.Cart, line models.CartLine) models.Cart {
	lines := cloneLines(state.Lines)

	merged := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			lines[i].SelectedInclusions = cloneInclusions(line.SelectedInclusions)
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, cloneLine(line))
	}

	return recompute(lines)
}

func removeLine(state models.Cart, productID int) models.Cart {
	lines := make([]models.CartLine, 0, len(state.Lines))
	for _, l := range state.Lines {
		if l.ProductID != productID {
			lines = append(lines, cloneLine(l))
		}
	}
	return recompute(lines)
}

func updateQuantity(state models.Cart, productID, quantity int) models.Cart {
	lines := cloneLines(state.Lines)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			break
		}
	}
	return recompute(lines)
}

// recompute, toplamı her zaman satırlardan baştan hesaplar.
func recompute(lines []models.CartLine) models.Cart {
	return models.Cart{
		Lines: lines,
		Total: pricing.CartTotal(lines),
	}
}

func cloneCart(c models.Cart) models.Cart {
	return models.Cart{Lines: cloneLines(c.Lines), Total: c.Total}
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	for i, l := range lines {
		out[i] = cloneLine(l)
	}
	return out
}

func cloneLine(l models.CartLine) models.CartLine {
	l.SelectedInclusions = cloneInclusions(l.SelectedInclusions)
	return l
}

func cloneInclusions(incs []models.SelectedInclusion) []models.SelectedInclusion {
	if incs == nil {
		return nil
	}
	out := make([]models.SelectedInclusion, len(incs))
	copy(out, incs)
	return out
}
