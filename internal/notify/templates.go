package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const dateLayout = "Mon, 02 Jan 2006 15:04"

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #222;">
<h2 style="color:#8B4513;">{{.Title}}</h2>
{{range .Lines}}<p>{{.}}</p>
{{end}}{{if .Rows}}<table cellpadding="6" style="border-collapse:collapse;">
{{range .Rows}}<tr><td><strong>{{index . 0}}</strong></td><td>{{index . 1}}</td></tr>
{{end}}</table>{{end}}
<p style="color:#888;font-size:12px;">Housecall Barbers</p>
</body></html>`))

type body struct {
	Title string
	Lines []string
	Rows  [][2]string
}

func render(b body) string {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, b); err != nil {
		return b.Title
	}
	return buf.String()
}

func money(v float64) string {
	return fmt.Sprintf("KES %.2f", v)
}

func bookingRows(b *models.Booking, loc *time.Location) [][2]string {
	return [][2]string{
		{"Booking", fmt.Sprintf("#%d", b.ID)},
		{"When", b.PreferredDatetime.In(loc).Format(dateLayout)},
		{"Service", b.ServiceType},
		{"Price", money(b.ServicePrice)},
		{"Address", b.Address},
	}
}

// BarberAssigned tells the barber about a new job.
func BarberAssigned(barber *models.Barber, b *models.Booking, loc *time.Location) Message {
	rows := append(bookingRows(b, loc),
		[2]string{"Customer", b.CustomerName},
		[2]string{"Customer phone", b.CustomerPhone},
	)
	if b.Notes != "" {
		rows = append(rows, [2]string{"Notes", b.Notes})
	}
	return Message{
		To:      barber.Email,
		Subject: fmt.Sprintf("New booking #%d assigned to you", b.ID),
		HTML: render(body{
			Title: "New booking assigned",
			Lines: []string{fmt.Sprintf("Hi %s, you have been assigned a new housecall.", barber.Name)},
			Rows:  rows,
		}),
		Text: fmt.Sprintf("New booking #%d on %s at %s", b.ID, b.PreferredDatetime.In(loc).Format(dateLayout), b.Address),
	}
}

// BookingConfirmation goes to the customer when they left an email.
func BookingConfirmation(b *models.Booking, loc *time.Location) Message {
	rows := append(bookingRows(b, loc), [2]string{"Barber", b.BarberName})
	return Message{
		To:      b.CustomerEmail,
		Subject: fmt.Sprintf("Your booking #%d is confirmed", b.ID),
		HTML: render(body{
			Title: "Booking confirmed",
			Lines: []string{fmt.Sprintf("Hi %s, thanks for booking with us.", b.CustomerName)},
			Rows:  rows,
		}),
	}
}

func BookingCancelled(barber *models.Barber, b *models.Booking, loc *time.Location) Message {
	rows := append(bookingRows(b, loc),
		[2]string{"Reason", b.CancellationReason},
		[2]string{"Cancelled by", b.CancelledBy},
	)
	return Message{
		To:      barber.Email,
		Subject: fmt.Sprintf("Booking #%d was cancelled", b.ID),
		HTML: render(body{
			Title: "Booking cancelled",
			Lines: []string{fmt.Sprintf("Hi %s, the following booking no longer needs you.", barber.Name)},
			Rows:  rows,
		}),
	}
}

func PaymentReceipt(b *models.Booking, p *models.Payment, loc *time.Location) Message {
	return Message{
		To:      b.CustomerEmail,
		Subject: fmt.Sprintf("Payment receipt %s", p.TransactionID),
		HTML: render(body{
			Title: "Payment received",
			Lines: []string{fmt.Sprintf("Hi %s, we have received your payment.", b.CustomerName)},
			Rows: [][2]string{
				{"Transaction", p.TransactionID},
				{"Amount", money(p.Amount)},
				{"Method", p.PaymentMethod},
				{"Booking", fmt.Sprintf("#%d", b.ID)},
				{"Service date", b.PreferredDatetime.In(loc).Format(dateLayout)},
			},
		}),
	}
}

func BarberBlocked(barber *models.Barber, loc *time.Location) Message {
	rows := [][2]string{
		{"Reason", barber.BlockReason},
		{"Category", barber.BlockCategory},
		{"Severity", barber.BlockSeverity},
		{"Type", barber.BlockType},
	}
	if barber.BlockExpiresAt != nil {
		rows = append(rows, [2]string{"Until", barber.BlockExpiresAt.In(loc).Format(dateLayout)})
	}
	return Message{
		To:      barber.Email,
		Subject: "Your account has been suspended",
		HTML: render(body{
			Title: "Account suspended",
			Lines: []string{
				fmt.Sprintf("Hi %s, you will not receive new bookings while this block is active.", barber.Name),
			},
			Rows: rows,
		}),
	}
}

// BlockExpiringAdmin tells the admin which temporary blocks lapse soon, so a
// block can be extended before the barber re-enters the pool.
func BlockExpiringAdmin(to string, barber *models.Barber, now time.Time, loc *time.Location) Message {
	rows := [][2]string{
		{"Barber", fmt.Sprintf("%s (#%d)", barber.Name, barber.ID)},
		{"Reason", barber.BlockReason},
		{"Category", barber.BlockCategory},
		{"Blocked by", barber.BlockedBy},
	}
	if barber.BlockExpiresAt != nil {
		rows = append(rows,
			[2]string{"Expires", barber.BlockExpiresAt.In(loc).Format(dateLayout)},
			[2]string{"Remaining", hoursLeft(now, *barber.BlockExpiresAt)},
		)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Block on %s expires soon", barber.Name),
		HTML: render(body{
			Title: "Temporary block expiring",
			Lines: []string{"The barber below returns to the assignment pool automatically when the block expires."},
			Rows:  rows,
		}),
	}
}

func BlockExpiringBarber(barber *models.Barber, now time.Time, loc *time.Location) Message {
	rows := [][2]string{}
	if barber.BlockExpiresAt != nil {
		rows = append(rows,
			[2]string{"Expires", barber.BlockExpiresAt.In(loc).Format(dateLayout)},
			[2]string{"Remaining", hoursLeft(now, *barber.BlockExpiresAt)},
		)
	}
	return Message{
		To:      barber.Email,
		Subject: "Your suspension ends soon",
		HTML: render(body{
			Title: "Suspension ending",
			Lines: []string{
				fmt.Sprintf("Hi %s, your temporary block ends soon and you will start receiving bookings again.", barber.Name),
			},
			Rows: rows,
		}),
	}
}

func hoursLeft(now, until time.Time) string {
	h := int(until.Sub(now).Round(time.Hour) / time.Hour)
	if h < 1 {
		return "less than an hour"
	}
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}

func DailySummary(barber *models.Barber, day time.Time, bookings []models.Booking, completed, cancelled int, earnings float64, loc *time.Location) Message {
	rows := make([][2]string, 0, len(bookings)+3)
	rows = append(rows,
		[2]string{"Bookings", fmt.Sprintf("%d", len(bookings))},
		[2]string{"Completed", fmt.Sprintf("%d", completed)},
		[2]string{"Cancelled", fmt.Sprintf("%d", cancelled)},
		[2]string{"Earnings", money(earnings)},
	)
	for _, b := range bookings {
		rows = append(rows, [2]string{
			b.PreferredDatetime.In(loc).Format("15:04"),
			fmt.Sprintf("%s, %s (%s)", b.CustomerName, b.ServiceType, b.Status),
		})
	}
	return Message{
		To:      barber.Email,
		Subject: "Your summary for " + day.In(loc).Format("Mon 02 Jan"),
		HTML: render(body{
			Title: "Daily summary",
			Lines: []string{fmt.Sprintf("Hi %s, here is how yesterday went.", barber.Name)},
			Rows:  rows,
		}),
	}
}
