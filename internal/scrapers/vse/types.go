package vse

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SecurityType is the kind of instrument a holding is, as the site names it.
type SecurityType string

const (
	SECURITY_STOCK SecurityType = "Stock"
	SECURITY_FUND  SecurityType = "ExchangeTradedFund"
)

// OrderType is both the side of an order being submitted and the kind of a past transaction.
type OrderType string

const (
	ORDER_BUY   OrderType = "Buy"
	ORDER_SHORT OrderType = "Short"
	ORDER_SELL  OrderType = "Sell"
	ORDER_COVER OrderType = "Cover"
)

func (t OrderType) Valid() bool {
	switch t {
	case ORDER_BUY, ORDER_SHORT, ORDER_SELL, ORDER_COVER:
		return true
	}
	return false
}

// ParseOrderType matches the site's spelling case-insensitively.
func ParseOrderType(value string) (OrderType, bool) {
	for _, t := range []OrderType{ORDER_BUY, ORDER_SHORT, ORDER_SELL, ORDER_COVER} {
		if strings.EqualFold(string(t), strings.TrimSpace(value)) {
			return t, true
		}
	}
	return "", false
}

// PositionType is how a holding was opened, either ORDER_BUY (long) or ORDER_SHORT.
type PositionType = OrderType

// Portfolio is a snapshot of a game account's totals.
type Portfolio struct {
	// Time is the server's time when the snapshot was taken, in UTC.
	Time            time.Time
	Cash            decimal.Decimal
	Leverage        decimal.Decimal
	NetWorth        decimal.Decimal
	PurchasingPower decimal.Decimal
	StartingCash    decimal.Decimal
	// Return is the amount gained (or lost) over StartingCash.
	Return decimal.Decimal
}

// Stock is a single position held in a game.
//
// Price is the value the holdings page displays, it is ROUNDED TO THE CENT. Anything
// computed off of it will drift from the real market price, use [Client.Search] when the
// full precision price is needed.
//
// The purchase price of a position is not available on the holdings page and is not extracted.
type Stock struct {
	// ID is the security id (Fuid) the site assigns to an instrument, it is what orders are placed against.
	ID           string
	Ticker       string
	SecurityType SecurityType
	Price        decimal.Decimal
	Shares       decimal.Decimal
	PositionType PositionType
	// Return is the cumulative return on the position.
	Return decimal.Decimal
}

// Transaction is a single executed order.
type Transaction struct {
	Ticker        string
	OrderTime     time.Time
	ExecutionTime time.Time
	Type          OrderType
	Shares        decimal.Decimal
	Price         decimal.Decimal
}

// SearchResult is the answer to a ticker lookup, it is not stored anywhere.
type SearchResult struct {
	// Price is the full precision price.
	Price decimal.Decimal
	// ID is the security id (Fuid) of the ticker.
	ID string
	// Time is the server's time in America/New_York.
	Time time.Time
}

// Order is an instruction to trade a number of shares of a security.
type Order struct {
	// ID is the security id (Fuid), not the ticker symbol.
	ID     string
	Shares decimal.Decimal
	Type   OrderType
}

type OrderStatus int

const (
	ORDER_SUCCESS OrderStatus = iota
	ORDER_FAILURE
)

func (s OrderStatus) String() string {
	if s == ORDER_SUCCESS {
		return "success"
	}
	return "failure"
}

// OrderResult is the server's verdict on a submitted order.
type OrderResult struct {
	Status OrderStatus
	// Message is the message the server attached to its verdict.
	Message string
}

func (r OrderResult) Succeeded() bool {
	return r.Status == ORDER_SUCCESS
}

// AuthResult is the outcome of a login attempt.
type AuthResult int

const (
	AUTH_UNKNOWN AuthResult = iota
	AUTH_AUTHENTICATED
	AUTH_REJECTED
)

func (r AuthResult) String() string {
	switch r {
	case AUTH_AUTHENTICATED:
		return "authenticated"
	case AUTH_REJECTED:
		return "rejected"
	}
	return "unknown"
}
