package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"dentalmarket/internal/models"
)

// FileStorage, sepet slotlarını tek bir JSON dosyasında saklar. Her slot
// ham JSON olarak tutulur; bir slotun bozulması diğerlerini etkilemez.
type FileStorage struct {
	mu       sync.RWMutex
	filePath string
	slots    map[string]json.RawMessage
}

// NewFileStorage, yeni bir FileStorage oluşturur ve slotları yükler.
func NewFileStorage(filePath string) (*FileStorage, error) {
	fs := &FileStorage{
		filePath: filePath,
		slots:    map[string]json.RawMessage{},
	}
	if err := fs.loadData(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStorage) loadData() error {
	if _, err := os.Stat(fs.filePath); os.IsNotExist(err) {
		return fs.saveData()
	}

	fileData, err := os.ReadFile(fs.filePath)
	if err != nil {
		return err
	}
	// Dosya boşsa hata vermemesi için kontrol
	if len(fileData) == 0 {
		return nil
	}

	return json.Unmarshal(fileData, &fs.slots)
}

func (fs *FileStorage) saveData() error {
	data, err := json.MarshalIndent(fs.slots, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.filePath, data, 0644)
}

// Load, kimliğin slotundaki sepeti döndürür. Slot yoksa boş sepet, slot
// çözülemiyorsa veya şekli tutmuyorsa hata döner; çağıran bunu boş sepet
// olarak ele alır.
func (fs *FileStorage) Load(identity string) (models.Cart, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	raw, ok := fs.slots[identity]
	if !ok {
		return models.Cart{Lines: []models.CartLine{}}, nil
	}

	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return models.Cart{}, fmt.Errorf("sepet kaydı çözülemedi: %w", err)
	}
	if cart.Lines == nil {
		return models.Cart{}, fmt.Errorf("sepet kaydı geçersiz: satır listesi yok")
	}
	return cart, nil
}

// Save, sepetin tamamını kimliğin slotuna yazar.
func (fs *FileStorage) Save(identity string, cart models.Cart) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	fs.slots[identity] = raw
	return fs.saveData()
}

// Delete, kimliğin slotunu kaldırır.
func (fs *FileStorage) Delete(identity string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	delete(fs.slots, identity)
	return fs.saveData()
}
