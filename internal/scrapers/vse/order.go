package vse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const submitOrderPath = "/game/{game}/trade/submitorder"

type orderPayload struct {
	Fuid   string `json:"Fuid"`
	Shares string `json:"Shares"`
	Type   string `json:"Type"`
}

type orderResponse struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

// encodeOrder renders the single element array the order endpoint expects.
func encodeOrder(order Order) ([]byte, error) {
	return json.Marshal([]orderPayload{{
		Fuid:   order.ID,
		Shares: order.Shares.String(),
		Type:   string(order.Type),
	}})
}

func validateOrder(order Order) error {
	if order.ID == "" {
		return fmt.Errorf("%w: empty security id", ErrInvalidArgument)
	}
	if !order.Shares.IsPositive() {
		return fmt.Errorf("%w: share amount must be positive, got %s", ErrInvalidArgument, order.Shares)
	}
	if !order.Type.Valid() {
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidArgument, order.Type)
	}
	return nil
}

// SubmitOrder places an order. A rejected order is not an error: the returned OrderResult
// carries the server's verdict and message, errors are reserved for requests that could
// not be made or answers that could not be read.
func (c *Client) SubmitOrder(ctx context.Context, cred Credential, game string, order Order) (OrderResult, error) {
	err := requireGame(game)
	if err != nil {
		return OrderResult{}, err
	}
	err = validateOrder(order)
	if err != nil {
		return OrderResult{}, err
	}
	c.tel.ReportDebug("submit order", game, order.Type, order.ID, order.Shares.String())

	body, err := encodeOrder(order)
	if err != nil {
		c.tel.ReportBroken(
			report_client_submit_order,
			fmt.Errorf("json marshal: %w", err),
		)
		return OrderResult{}, err
	}

	httpClient, err := c.session(cred)
	if err != nil {
		return OrderResult{}, err
	}

	res, err := httpClient.R().
		SetContext(ctx).
		SetPathParam("game", game).
		SetQueryParam("week", "1").
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetBody(body).
		Post(submitOrderPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_submit_order,
			fmt.Errorf("fetch: %w", err),
			game,
		)
		return OrderResult{}, err
	}

	if res.IsError() {
		statusErr := newStatusError(res)
		c.tel.ReportBroken(report_client_submit_order, statusErr, game)
		return OrderResult{}, statusErr
	}

	var parsed orderResponse
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		err = newExtractionError(
			"submit order", "response", -1,
			fmt.Errorf("unmarshal json (%s): %w", res.Status(), err),
		)
		c.tel.ReportBroken(report_client_submit_order, err, game)
		return OrderResult{}, err
	}

	if !parsed.Succeeded {
		c.tel.ReportBroken(
			report_client_submit_order,
			fmt.Errorf("%s order failed, server said: %s", order.Type, parsed.Message),
			game, order.ID,
		)
		return OrderResult{Status: ORDER_FAILURE, Message: parsed.Message}, nil
	}

	c.tel.ReportInfo(
		fmt.Sprintf("%s order succeeded", order.Type),
		parsed.Message,
		game, order.ID,
	)
	return OrderResult{Status: ORDER_SUCCESS, Message: parsed.Message}, nil
}

// Sell sells shares of a held long position. `id` is the security id, not the ticker symbol.
func (c *Client) Sell(ctx context.Context, cred Credential, game, id string, shares decimal.Decimal) (OrderResult, error) {
	return c.SubmitOrder(ctx, cred, game, Order{ID: id, Shares: shares, Type: ORDER_SELL})
}

// Buy opens or grows a long position.
func (c *Client) Buy(ctx context.Context, cred Credential, game, id string, shares decimal.Decimal) (OrderResult, error) {
	return c.SubmitOrder(ctx, cred, game, Order{ID: id, Shares: shares, Type: ORDER_BUY})
}

// Short opens or grows a short position.
func (c *Client) Short(ctx context.Context, cred Credential, game, id string, shares decimal.Decimal) (OrderResult, error) {
	return c.SubmitOrder(ctx, cred, game, Order{ID: id, Shares: shares, Type: ORDER_SHORT})
}

// Cover buys back shares of a short position.
func (c *Client) Cover(ctx context.Context, cred Credential, game, id string, shares decimal.Decimal) (OrderResult, error) {
	return c.SubmitOrder(ctx, cred, game, Order{ID: id, Shares: shares, Type: ORDER_COVER})
}
