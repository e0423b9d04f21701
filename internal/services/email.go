package services

import (
	"fmt"
	"log"
	"strings"

	"dentalmarket/internal/config"
	"dentalmarket/internal/models"
	"dentalmarket/internal/pricing"

	"gopkg.in/gomail.v2"
)

// EmailService, e-posta gönderimi için kullanılır
type EmailService struct {
	dialer  *gomail.Dialer
	from    string
	adminTo string
}

// NewEmailService, yeni bir EmailService örneği oluşturur. SMTP bilgileri
// ayarlanmamışsa test modunda çalışır ve sadece log'a yazar.
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	if cfg.User == "" || cfg.Password == "" {
		log.Println("SMTP bilgileri ayarlanmamış. E-posta gönderimi devre dışı.")
		return &EmailService{
			dialer:  nil,
			from:    "noreply@dentalmarket.ph",
			adminTo: cfg.AdminTo,
		}
	}

	from := cfg.From
	if from == "" {
		from = cfg.User
	}

	return &EmailService{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    from,
		adminTo: cfg.AdminTo,
	}
}

// SendCustomerOrderConfirmation, müşteriye ödeme onayı e-postası gönderir.
func (es *EmailService) SendCustomerOrderConfirmation(to string, order *models.Order) error {
	if to == "" {
		return nil
	}

	subject := fmt.Sprintf("Siparişiniz alındı - %s", order.OrderNumber)
	body := orderSummaryHTML(order)
	return es.send(to, subject, body)
}

// SendAdminOrderNotification, admin'e yeni ödenmiş sipariş bildirimi gönderir.
func (es *EmailService) SendAdminOrderNotification(order *models.Order) error {
	if es.adminTo == "" {
		return nil
	}

	subject := fmt.Sprintf("Yeni sipariş - %s (%s)", order.OrderNumber, pricing.FormatAmount(order.Total))
	body := orderSummaryHTML(order)
	return es.send(es.adminTo, subject, body)
}

// SendQuotationNotification, admin'e yeni teklif talebi bildirimi gönderir.
func (es *EmailService) SendQuotationNotification(quotation *models.Quotation, productName string) error {
	if es.adminTo == "" {
		return nil
	}

	subject := fmt.Sprintf("Yeni teklif talebi - %s", productName)
	body := fmt.Sprintf(`
		<h2>Yeni teklif talebi</h2>
		<p><b>Ürün:</b> %s</p>
		<p><b>Ad:</b> %s</p>
		<p><b>E-posta:</b> %s</p>
		<p><b>Telefon:</b> %s</p>
		<p>%s</p>`,
		productName, quotation.Name, quotation.Email, quotation.Phone, quotation.Message)
	return es.send(es.adminTo, subject, body)
}

func (es *EmailService) send(to, subject, body string) error {
	if es.dialer == nil {
		// SMTP ayarlanmamışsa, sadece log'a yaz
		log.Printf("E-posta gönderimi devre dışı. Alıcı: %s, Konu: %s", to, subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("e-posta gönderilemedi: %w", err)
	}
	return nil
}

func orderSummaryHTML(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Sipariş %s</h2>", order.OrderNumber)
	fmt.Fprintf(&b, "<p><b>Müşteri:</b> %s<br><b>Adres:</b> %s<br><b>Telefon:</b> %s</p>",
		order.CustomerName, order.CustomerAddress, order.CustomerMobile)
	b.WriteString("<ul>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s x%d - %s</li>", item.Name, item.Quantity, pricing.FormatAmount(item.Price))
		for _, inc := range item.IncludedItems {
			fmt.Fprintf(&b, "<li>&nbsp;&nbsp;+ %s - %s</li>", inc.Name, pricing.FormatAmount(inc.Price))
		}
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p><b>Toplam:</b> %s</p>", pricing.FormatAmount(order.Total))
	return b.String()
}
