package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// FormatAppointment renders one candidate as an HTML notification message
func FormatAppointment(c *entities.AppointmentCandidate) string {
	icon := "🚪"
	if c.Type == 1 {
		icon = "👨‍⚕️"
	}

	lines := []string{
		"🔔 <b>Appointment available!</b>\n",
		fmt.Sprintf("%s <b>%s</b>", icon, c.DisplayName),
	}

	if c.Position != "" {
		lines = append(lines, fmt.Sprintf("📋 %s", c.Position))
	}

	lines = append(lines, fmt.Sprintf("\n📅 <b>Date:</b> %s", c.Date.Format("02.01.2006 (Monday)")))

	if c.TimeFrom != "" && c.TimeTo != "" {
		lines = append(lines, fmt.Sprintf("🕐 <b>Time:</b> %s - %s", c.TimeFrom, c.TimeTo))
	} else if c.TimeFrom != "" {
		lines = append(lines, fmt.Sprintf("🕐 <b>Time from:</b> %s", c.TimeFrom))
	}

	if c.TicketCount > 0 {
		lines = append(lines, fmt.Sprintf("🎫 <b>Tickets:</b> %d", c.TicketCount))
	}

	if c.ClosestEntryTime != "" {
		if closest, err := time.Parse(time.RFC3339, c.ClosestEntryTime); err == nil {
			lines = append(lines, fmt.Sprintf("⏰ <b>Closest slot:</b> %s", closest.Format("02.01.2006 15:04")))
		}
	}

	if c.Room != "" {
		lines = append(lines, fmt.Sprintf("🏥 <b>Room:</b> %s", c.Room))
	}

	if c.FacilityName != "" {
		lines = append(lines, fmt.Sprintf("\n🏛 <b>%s</b>", c.FacilityName))
	}
	if c.FacilityAddress != "" {
		lines = append(lines, fmt.Sprintf("📍 %s", c.FacilityAddress))
	}
	if c.Separation != "" {
		lines = append(lines, fmt.Sprintf("🏢 %s", c.Separation))
	}
	if c.FacilityPhone != "" {
		lines = append(lines, fmt.Sprintf("📞 %s", c.FacilityPhone))
	}

	return strings.Join(lines, "\n")
}
