package cart

import (
	"errors"
	"path/filepath"
	"testing"

	"dentalmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage, testler için bellek içi Storage implementasyonu.
type memStorage struct {
	slots   map[string]models.Cart
	corrupt map[string]bool
}

func newMemStorage() *memStorage {
	return &memStorage{slots: map[string]models.Cart{}, corrupt: map[string]bool{}}
}

func (m *memStorage) Load(identity string) (models.Cart, error) {
	if m.corrupt[identity] {
		return models.Cart{}, errors.New("sepet kaydı çözülemedi")
	}
	cart, ok := m.slots[identity]
	if !ok {
		return models.Cart{Lines: []models.CartLine{}}, nil
	}
	return cart, nil
}

func (m *memStorage) Save(identity string, cart models.Cart) error {
	m.slots[identity] = cart
	return nil
}

func (m *memStorage) Delete(identity string) error {
	delete(m.slots, identity)
	return nil
}

func chairLine(qty int) models.CartLine {
	return models.CartLine{
		ProductID: 1,
		Name:      "Dental Chair Model A",
		UnitPrice: 15000000,
		Quantity:  qty,
		SelectedInclusions: []models.SelectedInclusion{
			{InclusionID: 7, Name: "Warranty", Price: 500000},
		},
	}
}

func TestAddComputesTotal(t *testing.T) {
	store := NewStore(newMemStorage(), "guest:abc")

	cart := store.Add(chairLine(1))

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(15500000), cart.Total)
}

func TestAddMergesQuantityAndReplacesInclusions(t *testing.T) {
	store := NewStore(newMemStorage(), "guest:abc")

	store.Add(chairLine(1))

	second := chairLine(2)
	second.SelectedInclusions = []models.SelectedInclusion{
		{InclusionID: 9, Name: "Installation", Price: 300000},
	}
	cart := store.Add(second)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	// Son ekleme kazanır: ek ürünler ikinci çağrınınkiler olmalı.
	require.Len(t, cart.Lines[0].SelectedInclusions, 1)
	assert.Equal(t, 9, cart.Lines[0].SelectedInclusions[0].InclusionID)
	assert.Equal(t, int64((15000000+300000)*3), cart.Total)
}

func TestRemoveRecomputesTotal(t *testing.T) {
	store := NewStore(newMemStorage(), "guest:abc")
	store.Add(chairLine(1))
	store.Add(models.CartLine{ProductID: 2, Name: "Autoclave", UnitPrice: 4500000, Quantity: 1})

	cart := store.Remove(1)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].ProductID)
	assert.Equal(t, int64(4500000), cart.Total)
}

func TestUpdateQuantitySetsDirectly(t *testing.T) {
	store := NewStore(newMemStorage(), "guest:abc")
	store.Add(chairLine(1))

	cart := store.UpdateQuantity(1, 4)

	assert.Equal(t, 4, cart.Lines[0].Quantity)
	assert.Equal(t, int64(15500000*4), cart.Total)
}

func TestClearErasesSlot(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage, "guest:abc")
	store.Add(chairLine(1))

	cart := store.Clear()

	assert.Empty(t, cart.Lines)
	assert.Equal(t, int64(0), cart.Total)
	_, ok := storage.slots["guest:abc"]
	assert.False(t, ok, "slot silinmiş olmalı")
}

func TestEveryMutationPersistsSnapshot(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage, "guest:abc")

	store.Add(chairLine(1))
	assert.Equal(t, int64(15500000), storage.slots["guest:abc"].Total)

	store.UpdateQuantity(1, 2)
	assert.Equal(t, int64(31000000), storage.slots["guest:abc"].Total)
}

func TestSwitchIdentityFlushesThenLoads(t *testing.T) {
	storage := newMemStorage()
	storage.slots["drsantos"] = models.Cart{
		Lines: []models.CartLine{{ProductID: 5, Name: "Compressor", UnitPrice: 2000000, Quantity: 1}},
		Total: 2000000,
	}

	store := NewStore(storage, "guest:abc")
	store.Add(chairLine(1))

	cart := store.SwitchIdentity("drsantos")

	// Yeni kimliğin sepeti yüklendi, misafir sepetiyle birleşmedi.
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].ProductID)

	// Misafir sepeti kendi slotunda duruyor.
	guest := storage.slots["guest:abc"]
	require.Len(t, guest.Lines, 1)
	assert.Equal(t, 1, guest.Lines[0].ProductID)
}

func TestIdentitiesAreIsolated(t *testing.T) {
	storage := newMemStorage()

	a := NewStore(storage, "guest:a")
	b := NewStore(storage, "guest:b")

	a.Add(chairLine(1))
	b.Add(models.CartLine{ProductID: 2, Name: "Autoclave", UnitPrice: 4500000, Quantity: 2})

	assert.Equal(t, int64(15500000), storage.slots["guest:a"].Total)
	assert.Equal(t, int64(9000000), storage.slots["guest:b"].Total)
	assert.Len(t, a.Snapshot().Lines, 1)
	assert.Len(t, b.Snapshot().Lines, 1)
}

func TestCorruptSlotLoadsAsEmptyCart(t *testing.T) {
	storage := newMemStorage()
	storage.corrupt["guest:bad"] = true

	store := NewStore(storage, "guest:bad")

	cart := store.Snapshot()
	assert.Empty(t, cart.Lines)
	assert.Equal(t, int64(0), cart.Total)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	store := NewStore(newMemStorage(), "guest:abc")
	store.Add(chairLine(1))

	snap := store.Snapshot()
	snap.Lines[0].Quantity = 99
	snap.Lines[0].SelectedInclusions[0].Price = 1

	cart := store.Snapshot()
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, int64(500000), cart.Lines[0].SelectedInclusions[0].Price)
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carts.json")
	fs, err := NewFileStorage(path)
	require.NoError(t, err)

	cart := models.Cart{Lines: []models.CartLine{chairLine(2)}, Total: 31000000}
	require.NoError(t, fs.Save("drsantos", cart))

	// Yeniden açınca aynı slot okunmalı.
	fs2, err := NewFileStorage(path)
	require.NoError(t, err)

	loaded, err := fs2.Load("drsantos")
	require.NoError(t, err)
	assert.Equal(t, cart.Total, loaded.Total)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, 2, loaded.Lines[0].Quantity)

	// Bilinmeyen kimlik boş sepet döndürür.
	empty, err := fs2.Load("guest:none")
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
}

func TestFileStorageCorruptSlotDoesNotPoisonOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carts.json")
	fs, err := NewFileStorage(path)
	require.NoError(t, err)

	require.NoError(t, fs.Save("ok", models.Cart{Lines: []models.CartLine{chairLine(1)}, Total: 15500000}))

	// Bozuk slotu elle enjekte et.
	fs.mu.Lock()
	fs.slots["bad"] = []byte(`{"lines": "not-an-array", "total": "nope"}`)
	fs.mu.Unlock()

	_, err = fs.Load("bad")
	assert.Error(t, err)

	loaded, err := fs.Load("ok")
	require.NoError(t, err)
	assert.Equal(t, int64(15500000), loaded.Total)
}
