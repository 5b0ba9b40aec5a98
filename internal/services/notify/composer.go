package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
)

// AdminPush is the message sent to connected administrators.
type AdminPush struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	VehicleID string         `json:"vehicleId"`
	Timestamp time.Time      `json:"timestamp"`
	Vehicle   models.Vehicle `json:"vehicle"`
}

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "submitted"}}<h2>Nuevo anuncio pendiente de revisión</h2>
<p><strong>{{.V.Brand}} {{.V.Model}} {{.V.Year}}</strong> · {{.V.Currency}} {{printf "%.0f" .V.Price}}</p>
<p>Vendedor: {{.V.SellerContact.Name}} ({{.V.SellerContact.Email}}, {{.V.SellerContact.Phone}})</p>
<p>Ubicación: {{.V.Location}}</p>
<p><a href="{{.AdminURL}}">Revisar anuncio</a></p>{{end}}
{{define "approved"}}<h2>¡Tu anuncio fue aprobado!</h2>
<p>Hola {{.V.SellerContact.Name}}, tu {{.V.Brand}} {{.V.Model}} {{.V.Year}} ya está publicado en 1auto.market.</p>
<p><a href="{{.PublicURL}}">Ver anuncio</a></p>{{end}}
{{define "rejected"}}<h2>Tu anuncio no fue aprobado</h2>
<p>Hola {{.V.SellerContact.Name}}, revisamos tu {{.V.Brand}} {{.V.Model}} {{.V.Year}} y no pudimos publicarlo.</p>
<p><strong>Motivo:</strong> {{.V.RejectionReason}}</p>
<p>Puedes editarlo y enviarlo de nuevo desde <a href="{{.MyAdsURL}}">Mis anuncios</a>.</p>{{end}}
`))

// Composer turns workflow events into outbox records.
type Composer struct {
	AdminEmail string
	BaseURL    string
}

type emailData struct {
	V         models.Vehicle
	AdminURL  string
	PublicURL string
	MyAdsURL  string
}

func (c Composer) data(v models.Vehicle) emailData {
	id := v.ID.Hex()
	return emailData{
		V:         v,
		AdminURL:  c.BaseURL + "/admin/vehicles/" + id,
		PublicURL: c.BaseURL + "/vehicles/" + id,
		MyAdsURL:  c.BaseURL + "/my-ads",
	}
}

func render(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func title(v models.Vehicle) string {
	return fmt.Sprintf("%s %s %d", v.Brand, v.Model, v.Year)
}

// ListingSubmitted notifies administrators about a new listing.
func (c Composer) ListingSubmitted(v models.Vehicle, at time.Time) ([]domain.Notification, error) {
	payload, err := json.Marshal(AdminPush{
		Type:      "new_listing",
		Message:   "Nuevo anuncio pendiente de revisión: " + title(v),
		VehicleID: v.ID.Hex(),
		Timestamp: at,
		Vehicle:   v,
	})
	if err != nil {
		return nil, err
	}

	out := []domain.Notification{{
		Channel:   domain.ChannelAdminPush,
		Event:     domain.EventListingSubmitted,
		VehicleID: v.ID,
		Payload:   payload,
	}}

	if c.AdminEmail != "" {
		body, err := render("submitted", c.data(v))
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Notification{
			Channel:   domain.ChannelEmail,
			Event:     domain.EventListingSubmitted,
			VehicleID: v.ID,
			Recipient: c.AdminEmail,
			Subject:   "Nuevo anuncio: " + title(v),
			Body:      body,
		})
	}
	return out, nil
}

// StatusChanged notifies the seller when a listing is approved, or rejected
// with a reason. Other transitions produce nothing. v must already carry the
// new status and reason.
func (c Composer) StatusChanged(v models.Vehicle, seller *models.User) ([]domain.Notification, error) {
	var (
		event, tmpl, subject, chat string
	)
	switch {
	case v.Status == domain.StatusApproved:
		event, tmpl = domain.EventListingApproved, "approved"
		subject = "Tu anuncio fue aprobado: " + title(v)
		chat = fmt.Sprintf("✅ Tu anuncio <b>%s</b> fue aprobado y ya está publicado.\n%s",
			template.HTMLEscapeString(title(v)), c.data(v).PublicURL)
	case v.Status == domain.StatusRejected && v.RejectionReason != "":
		event, tmpl = domain.EventListingRejected, "rejected"
		subject = "Tu anuncio no fue aprobado: " + title(v)
		chat = fmt.Sprintf("❌ Tu anuncio <b>%s</b> no fue aprobado.\nMotivo: %s",
			template.HTMLEscapeString(title(v)), template.HTMLEscapeString(v.RejectionReason))
	default:
		return nil, nil
	}

	body, err := render(tmpl, c.data(v))
	if err != nil {
		return nil, err
	}

	var out []domain.Notification
	if v.SellerContact.Email != "" {
		out = append(out, domain.Notification{
			Channel:   domain.ChannelEmail,
			Event:     event,
			VehicleID: v.ID,
			Recipient: v.SellerContact.Email,
			Subject:   subject,
			Body:      body,
		})
	}
	if seller != nil && seller.Telegram != nil && seller.Telegram.ChatID != 0 {
		out = append(out, domain.Notification{
			Channel:   domain.ChannelTelegram,
			Event:     event,
			VehicleID: v.ID,
			Recipient: strconv.FormatInt(seller.Telegram.ChatID, 10),
			Body:      chat,
		})
	}
	return out, nil
}
