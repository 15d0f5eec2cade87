package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
)

type normalizedCreateOrderInput struct {
	CustomerID string               `json:"customerId"`
	Lines      []normalizedLineItem `json:"lines"`
}

type normalizedLineItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order
// payload (excluding the idempotency key). Line order is part of the
// fingerprint because it is part of the resulting order.
func FingerprintCreateOrder(input ordertypes.CreateOrderInput) (string, error) {
	normalized := normalizedCreateOrderInput{
		CustomerID: input.CustomerID,
		Lines:      make([]normalizedLineItem, 0, len(input.Lines)),
	}
	for _, line := range input.Lines {
		normalized.Lines = append(normalized.Lines, normalizedLineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
