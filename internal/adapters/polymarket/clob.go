package polymarket

// clob.go — Real order execution via Polymarket CLOB API.
//
// Implements ports.OrderExecutor using AuthClient for L1/L2 auth. Entry orders
// and take-profit legs are placed as GTC (good-till-cancelled) limit orders.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gomodel "github.com/polymarket/go-order-utils/pkg/model"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/ladderbot/internal/domain"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

type clobOrderResponse struct {
	ErrorMsg string `json:"errorMsg"`
	OrderID  string `json:"orderID"`
	Status   string `json:"status"`
	Success  bool   `json:"success"`
}

type clobOpenOrder struct {
	ID           string `json:"id"`
	AssetID      string `json:"asset_id"`
	Side         string `json:"side"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Price        string `json:"price"`
	Status       string `json:"status"`
}

type clobOrdersResponse struct {
	Data       []clobOpenOrder `json:"data"`
	NextCursor string          `json:"next_cursor"`
}

// ctfAddress is the Conditional Tokens Framework contract on Polygon.
const ctfAddress = "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"

var balanceOfERC1155 abi.ABI

func init() {
	var err error
	balanceOfERC1155, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("balanceOf erc1155 abi: " + err.Error())
	}
}

// TradingClient implements ports.OrderExecutor against the real CLOB.
type TradingClient struct {
	auth      *AuthClient
	rpcClient *ethclient.Client
}

// NewTradingClient creates a TradingClient. rpcURL is used for on-chain
// ERC-1155 balance checks.
func NewTradingClient(auth *AuthClient, rpcURL string) (*TradingClient, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("clob: dial rpc: %w", err)
	}
	return &TradingClient{auth: auth, rpcClient: rpc}, nil
}

// PlaceLimitBuy signs and submits a GTC limit buy. The share size is
// notionalUSD / price, truncated to the CLOB's share precision.
func (tc *TradingClient) PlaceLimitBuy(ctx context.Context, tokenID string, price, notionalUSD decimal.Decimal) (domain.PlacedOrder, error) {
	if !price.IsPositive() {
		return domain.PlacedOrder{}, fmt.Errorf("clob.PlaceLimitBuy: non-positive price %s", price)
	}
	size := notionalUSD.Div(price)
	return tc.placeOrder(ctx, tokenID, price, size, gomodel.BUY, "BUY")
}

// PlaceLimitSell signs and submits a GTC limit sell of size shares.
func (tc *TradingClient) PlaceLimitSell(ctx context.Context, tokenID string, price, size decimal.Decimal) (domain.PlacedOrder, error) {
	return tc.placeOrder(ctx, tokenID, price, size, gomodel.SELL, "SELL")
}

func (tc *TradingClient) placeOrder(ctx context.Context, tokenID string, price, size decimal.Decimal, side gomodel.Side, sideStr string) (domain.PlacedOrder, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("clob: place order: creds: %w", err)
	}

	signed, err := tc.auth.buildSignedOrder(tokenID, price, size, side)
	if err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("clob: place order: sign: %w", err)
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       tokenID,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          sideStr,
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     tc.auth.creds.APIKey,
		OrderType: "GTC",
	}

	var resp clobOrderResponse
	if err := tc.auth.doL2(ctx, http.MethodPost, "/order", body, &resp); err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("clob: place order: post: %w", err)
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return domain.PlacedOrder{}, fmt.Errorf("clob: place order: clob error: %s", resp.ErrorMsg)
	}

	return domain.PlacedOrder{OrderID: resp.OrderID, Status: resp.Status}, nil
}

// GetOpenOrders returns all currently open orders for this wallet as a single
// snapshot.
func (tc *TradingClient) GetOpenOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return nil, fmt.Errorf("clob: get orders: creds: %w", err)
	}

	var resp clobOrdersResponse
	if err := tc.auth.doL2(ctx, http.MethodGet, "/orders", nil, &resp); err != nil {
		return nil, fmt.Errorf("clob: get orders: %w", err)
	}

	orders := make([]domain.OpenOrder, 0, len(resp.Data))
	for _, o := range resp.Data {
		orders = append(orders, clobOpenOrderToDomain(o))
	}
	return orders, nil
}

// TokenBalance returns the on-chain ERC-1155 balance for a conditional token,
// in shares (13.51 means 13.51 shares).
func (tc *TradingClient) TokenBalance(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	tid := new(big.Int)
	if _, ok := tid.SetString(tokenID, 10); !ok {
		tidBytes, err := hex.DecodeString(strings.TrimPrefix(tokenID, "0x"))
		if err != nil {
			return decimal.Zero, fmt.Errorf("clob: token balance: invalid token ID: %s", tokenID)
		}
		tid.SetBytes(tidBytes)
	}

	callData, err := balanceOfERC1155.Pack("balanceOf", tc.auth.address, tid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("clob: token balance: pack: %w", err)
	}

	ctf := common.HexToAddress(ctfAddress)
	result, err := tc.rpcClient.CallContract(ctx, ethereum.CallMsg{
		To:   &ctf,
		Data: callData,
	}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("clob: token balance: call: %w", err)
	}

	vals, err := balanceOfERC1155.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return decimal.Zero, fmt.Errorf("clob: token balance: unpack: %w", err)
	}

	raw := vals[0].(*big.Int)
	return decimal.NewFromBigInt(raw, -6), nil
}

// clobOpenOrderToDomain converts a CLOB API order row to the domain snapshot type.
func clobOpenOrderToDomain(o clobOpenOrder) domain.OpenOrder {
	side := domain.SideBuy
	if strings.EqualFold(o.Side, "SELL") {
		side = domain.SideSell
	}
	return domain.OpenOrder{
		OrderID:      o.ID,
		TokenID:      o.AssetID,
		Side:         side,
		Price:        parseDecimal(o.Price),
		OriginalSize: parseDecimal(o.OriginalSize),
		SizeMatched:  parseDecimal(o.SizeMatched),
	}
}

// parseDecimal parses a CLOB numeric string, devolviendo cero si está vacío o
// malformado (las filas corruptas no deben tumbar un tick entero).
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
