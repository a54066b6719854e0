package rpcx

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-sniper/internal/domain"
)

// Default retry behavior for market lookups. Lookups are read-only and
// tolerate retries, unlike submission.
const (
	DefaultLookupTimeout = 5 * time.Second
	DefaultMaxRetries    = 2
	DefaultRetryDelay    = 100 * time.Millisecond
	DefaultMaxDelay      = 1 * time.Second
	defaultBackoffMult   = 2.0
)

// initialCurveTokenReserves is the pump.fun bonding curve's starting real
// token reserve; sold-off fraction of it is the curve progress.
const initialCurveTokenReserves = 793_100_000_000_000

var (
	// ErrNoBondingCurve is returned when the mint has no bonding curve
	// account, meaning it is not a pump.fun launch (or already migrated).
	ErrNoBondingCurve = errors.New("bonding curve account not found")

	errNoProgramAddress = errors.New("no valid program derived address")
)

// MarketClient reads on-chain market state for a mint from one Solana RPC
// node. It implements the snapshot lookup the ingestion layer enriches
// candidates with.
type MarketClient struct {
	endpoint    string
	program     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
	now         func() time.Time
}

// MarketOption configures MarketClient.
type MarketOption func(*MarketClient)

// WithLookupClient sets a custom http.Client.
func WithLookupClient(client *http.Client) MarketOption {
	return func(c *MarketClient) {
		c.client = client
	}
}

// WithMaxRetries sets maximum retry attempts per call.
func WithMaxRetries(n int) MarketOption {
	return func(c *MarketClient) {
		c.maxRetries = n
	}
}

// NewMarketClient creates a market state client against one RPC node.
// program is the launch program owning the bonding curves.
func NewMarketClient(endpoint, program string, opts ...MarketOption) *MarketClient {
	c := &MarketClient{
		endpoint:    endpoint,
		program:     program,
		client:      &http.Client{Timeout: DefaultLookupTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: defaultBackoffMult,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot reads the bonding curve, holder distribution, and creator balance
// for the mint. Attributes that cannot be observed stay at their missing
// values so scoring rules fault instead of judging on zeroes.
func (c *MarketClient) Snapshot(ctx context.Context, mint, creator string) (domain.MarketSnapshot, error) {
	snap := domain.MarketSnapshot{
		LiquiditySOL:  -1,
		VolumeSOL:     -1,
		DevHoldingPct: -1,
		ObservedAt:    c.now().UnixMilli(),
	}

	curve, err := c.bondingCurveState(ctx, mint)
	if err != nil {
		return snap, err
	}
	snap.LiquiditySOL = float64(curve.realSolReserves) / 1e9
	if curve.virtualTokenReserves > 0 {
		snap.PriceSOL = (float64(curve.virtualSolReserves) / 1e9) / (float64(curve.virtualTokenReserves) / 1e6)
	}
	snap.CurveProgressPct = curveProgress(curve.realTokenReserves)

	supply, decimals, err := c.tokenSupply(ctx, mint)
	if err != nil {
		return snap, err
	}

	holders, err := c.largestAccounts(ctx, mint)
	if err != nil {
		return snap, err
	}
	// The largest account is the bonding curve's own pool balance; holder
	// concentration is judged on the rest.
	if len(holders) > 1 && supply > 0 {
		snap.TopHolderPct = holders[1] / supply * 100
	}
	snap.HolderCount = len(holders) - 1
	if snap.HolderCount < 0 {
		snap.HolderCount = 0
	}

	devBalance, err := c.ownerBalance(ctx, creator, mint, decimals)
	if err == nil && supply > 0 {
		snap.DevHoldingPct = devBalance / supply * 100
	}

	return snap, nil
}

type curveState struct {
	virtualTokenReserves uint64
	virtualSolReserves   uint64
	realTokenReserves    uint64
	realSolReserves      uint64
	tokenTotalSupply     uint64
	complete             bool
}

// bondingCurveState derives the curve PDA for the mint and decodes its
// account data.
func (c *MarketClient) bondingCurveState(ctx context.Context, mint string) (*curveState, error) {
	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return nil, fmt.Errorf("decode mint: %w", err)
	}
	programBytes, err := base58.Decode(c.program)
	if err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}

	curveAddr, err := findProgramAddress([][]byte{[]byte("bonding-curve"), mintBytes}, programBytes)
	if err != nil {
		return nil, err
	}

	var result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	params := []interface{}{
		base58.Encode(curveAddr),
		map[string]interface{}{"encoding": "base64", "commitment": "processed"},
	}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil || len(result.Value.Data) == 0 {
		return nil, ErrNoBondingCurve
	}

	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decode curve account data: %w", err)
	}
	return decodeCurveState(data)
}

// decodeCurveState parses the BondingCurve account layout:
// discriminator (8) | virtual_token_reserves | virtual_sol_reserves |
// real_token_reserves | real_sol_reserves | token_total_supply (u64 LE each) |
// complete (u8).
func decodeCurveState(data []byte) (*curveState, error) {
	const minLen = 8 + 5*8 + 1
	if len(data) < minLen {
		return nil, fmt.Errorf("curve account data too short: %d bytes", len(data))
	}
	body := data[8:]
	return &curveState{
		virtualTokenReserves: binary.LittleEndian.Uint64(body[0:8]),
		virtualSolReserves:   binary.LittleEndian.Uint64(body[8:16]),
		realTokenReserves:    binary.LittleEndian.Uint64(body[16:24]),
		realSolReserves:      binary.LittleEndian.Uint64(body[24:32]),
		tokenTotalSupply:     binary.LittleEndian.Uint64(body[32:40]),
		complete:             body[40] != 0,
	}, nil
}

func curveProgress(realTokenReserves uint64) float64 {
	if realTokenReserves >= initialCurveTokenReserves {
		return 0
	}
	sold := initialCurveTokenReserves - realTokenReserves
	return float64(sold) / float64(initialCurveTokenReserves) * 100
}

// tokenSupply returns the mint's total supply in UI units plus its decimals.
func (c *MarketClient) tokenSupply(ctx context.Context, mint string) (float64, int, error) {
	var result struct {
		Value struct {
			Amount   string `json:"amount"`
			Decimals int    `json:"decimals"`
		} `json:"value"`
	}
	params := []interface{}{mint, map[string]interface{}{"commitment": "processed"}}
	if err := c.call(ctx, "getTokenSupply", params, &result); err != nil {
		return 0, 0, err
	}
	raw, err := strconv.ParseFloat(result.Value.Amount, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse supply amount: %w", err)
	}
	return raw / pow10(result.Value.Decimals), result.Value.Decimals, nil
}

// largestAccounts returns nonzero balances of the top token accounts in UI
// units, largest first.
func (c *MarketClient) largestAccounts(ctx context.Context, mint string) ([]float64, error) {
	var result struct {
		Value []struct {
			UIAmount *float64 `json:"uiAmount"`
		} `json:"value"`
	}
	params := []interface{}{mint, map[string]interface{}{"commitment": "processed"}}
	if err := c.call(ctx, "getTokenLargestAccounts", params, &result); err != nil {
		return nil, err
	}
	var balances []float64
	for _, v := range result.Value {
		if v.UIAmount != nil && *v.UIAmount > 0 {
			balances = append(balances, *v.UIAmount)
		}
	}
	return balances, nil
}

// ownerBalance sums the owner's token accounts for the mint, in UI units.
func (c *MarketClient) ownerBalance(ctx context.Context, owner, mint string, decimals int) (float64, error) {
	var result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount string `json:"amount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	}
	params := []interface{}{
		owner,
		map[string]interface{}{"mint": mint},
		map[string]interface{}{"encoding": "jsonParsed", "commitment": "processed"},
	}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return 0, err
	}
	var total float64
	for _, v := range result.Value {
		raw, err := strconv.ParseFloat(v.Account.Data.Parsed.Info.TokenAmount.Amount, 64)
		if err != nil {
			continue
		}
		total += raw
	}
	return total / pow10(decimals), nil
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *MarketClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// findProgramAddress derives the first off-curve PDA for the seeds, walking
// the bump seed down from 255.
func findProgramAddress(seeds [][]byte, program []byte) ([]byte, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program)
		h.Write([]byte("ProgramDerivedAddress"))
		addr := h.Sum(nil)
		if !isOnCurve(addr) {
			return addr, nil
		}
	}
	return nil, errNoProgramAddress
}

// isOnCurve reports whether the bytes decode to a valid ed25519 point.
// PDAs must not, so nobody holds a private key for them.
func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func pow10(n int) float64 {
	p := 1.0
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
