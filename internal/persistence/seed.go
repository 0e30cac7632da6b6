package persistence

import (
	"fmt"
	"time"

	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/models"
)

var demoItems = []string{
	"Patinete Xiaomi Pro",
	"Televisor Samsung 4K",
	"Zapatillas Nike Air",
	"Cafetera Nespresso",
	`Monitor Gaming 27"`,
	"Bicicleta de Montaña",
	"Silla de Escritorio",
	"Microondas LG",
}

// DemoOrders builds the eight-order catalog staged at pickup points, as
// shown to a fresh install.
func DemoOrders(now time.Time) []models.Order {
	points := reference.PickupPoints()
	orders := make([]models.Order, 0, len(demoItems))
	seen := make(map[string]struct{}, len(demoItems))
	for i, item := range demoItems {
		point := points[i%len(points)]
		size := enums.PackageSizeSmall
		if i%2 == 0 {
			size = enums.PackageSizeMedium
		}
		id := reference.NewOrderID()
		for _, dup := seen[id]; dup; _, dup = seen[id] {
			id = reference.NewOrderID()
		}
		seen[id] = struct{}{}

		orders = append(orders, models.Order{
			ID:               id,
			ItemName:         item,
			SenderID:         fmt.Sprintf("system-%d", i),
			SenderName:       fmt.Sprintf("Vecino %d", i+1),
			PickupPointID:    point.ID,
			Origin:           point.Name,
			Destination:      fmt.Sprintf("Carrer de la pau, %d", 10+i),
			Size:             size,
			Instructions:     "Dejar en el punto.",
			EstimatedPrice:   reference.DemoOrderPrice,
			Status:           enums.OrderStatusAtPickupPoint,
			CreatedAt:        now,
			UpdatedAt:        now,
			ConfirmationCode: reference.NewConfirmationCode(),
			Chat:             []models.ChatMessage{},
		})
	}
	return orders
}
