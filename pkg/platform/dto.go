package platform

import (
	"fmt"
	"time"

	"github.com/merchantkit/order-sync/pkg/collector"
	"github.com/shopspring/decimal"
)

// Wire types for the platform's JSON API. Monetary amounts travel as integer
// cents; quantities travel as decimal strings.

type locationDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type listLocationsResponse struct {
	Locations []locationDTO `json:"locations"`
}

type moneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type lineItemDTO struct {
	CatalogObjectID string `json:"catalog_object_id,omitempty"`
	Name            string `json:"name,omitempty"`
	Quantity        string `json:"quantity"`
}

type recipientDTO struct {
	DisplayName  string `json:"display_name,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

type fulfillmentDTO struct {
	Type            string `json:"type,omitempty"`
	ShipmentDetails *struct {
		Recipient *recipientDTO `json:"recipient,omitempty"`
	} `json:"shipment_details,omitempty"`
}

type orderDTO struct {
	ID           string           `json:"id"`
	State        string           `json:"state"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
	TotalMoney   *moneyDTO        `json:"total_money,omitempty"`
	LineItems    []lineItemDTO    `json:"line_items,omitempty"`
	Fulfillments []fulfillmentDTO `json:"fulfillments,omitempty"`
}

type timeRangeDTO struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

type searchOrdersRequest struct {
	LocationIDs []string `json:"location_ids"`
	Cursor      string   `json:"cursor,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Query       struct {
		Filter struct {
			UpdatedAt timeRangeDTO `json:"updated_at"`
		} `json:"filter"`
		Sort struct {
			SortField string `json:"sort_field"`
			SortOrder string `json:"sort_order"`
		} `json:"sort"`
	} `json:"query"`
}

type searchOrdersResponse struct {
	Orders []orderDTO `json:"orders"`
	Cursor string     `json:"cursor,omitempty"`
}

type batchRetrieveCatalogRequest struct {
	ObjectIDs []string `json:"object_ids"`
}

type catalogObjectDTO struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	ItemVariationData *struct {
		SKU  string `json:"sku,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"item_variation_data,omitempty"`
}

type batchRetrieveCatalogResponse struct {
	Objects []catalogObjectDTO `json:"objects"`
}

// mapOrder converts a wire order into the collector's raw order type.
func mapOrder(dto orderDTO) (collector.RawOrder, error) {
	order := collector.RawOrder{
		ID:    dto.ID,
		State: dto.State,
	}

	if dto.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, dto.CreatedAt)
		if err != nil {
			return collector.RawOrder{}, fmt.Errorf("order %s: parse created_at: %w", dto.ID, err)
		}
		order.CreatedAtUTC = ts.UTC()
	}

	if dto.UpdatedAt != "" {
		ts, err := time.Parse(time.RFC3339, dto.UpdatedAt)
		if err != nil {
			return collector.RawOrder{}, fmt.Errorf("order %s: parse updated_at: %w", dto.ID, err)
		}
		order.UpdatedAtUTC = ts.UTC()
	}

	if dto.TotalMoney != nil {
		// Amounts are integer cents on the wire
		order.Total = decimal.New(dto.TotalMoney.Amount, -2)
		order.Currency = dto.TotalMoney.Currency
	}

	for _, item := range dto.LineItems {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return collector.RawOrder{}, fmt.Errorf("order %s: parse line item quantity %q: %w", dto.ID, item.Quantity, err)
		}
		order.LineItems = append(order.LineItems, collector.RawLineItem{
			CatalogObjectID: item.CatalogObjectID,
			Name:            item.Name,
			Quantity:        quantity,
		})
	}

	for _, f := range dto.Fulfillments {
		fulfillment := collector.Fulfillment{}
		if f.ShipmentDetails != nil && f.ShipmentDetails.Recipient != nil {
			r := f.ShipmentDetails.Recipient
			fulfillment.Recipient = &collector.Recipient{
				Name:  r.DisplayName,
				Email: r.EmailAddress,
				Phone: r.PhoneNumber,
			}
		}
		order.Fulfillments = append(order.Fulfillments, fulfillment)
	}

	return order, nil
}

// mapCatalogObject converts a wire catalog object into a catalog item.
// Returns false for objects that are not item variations.
func mapCatalogObject(dto catalogObjectDTO) (collector.CatalogItem, bool) {
	if dto.Type != "ITEM_VARIATION" || dto.ItemVariationData == nil {
		return collector.CatalogItem{}, false
	}
	return collector.CatalogItem{
		VariationID: dto.ID,
		SKU:         dto.ItemVariationData.SKU,
		Name:        dto.ItemVariationData.Name,
	}, true
}
